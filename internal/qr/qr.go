// Package qr renders share links as scannable QR images.
package qr

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// pngSize is the edge length in pixels of generated QR images.
const pngSize = 512

// EncodePNG renders link as a PNG QR code.
func EncodePNG(link string) ([]byte, error) {
	if link == "" {
		return nil, errors.New("qr: link cannot be empty")
	}
	png, err := qrcode.Encode(link, qrcode.Medium, pngSize)
	if err != nil {
		return nil, fmt.Errorf("qr: failed to encode link: %w", err)
	}
	return png, nil
}

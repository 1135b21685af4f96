// Package crypto provides AES-256-CBC encryption for data persisted at rest,
// used to protect stored face descriptors (biometric data). The wire format
// is base64(hex(iv) + hex(ciphertext)).
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// AES-256 key length
	keyLength = 32
	// AES block size, also the IV length for CBC
	aesBlockSize = 16
	ivLength     = 16
	// IV hex length (16 bytes, 2 characters per byte)
	ivHexLength = 32
)

// pkcs7Pad pads data to a multiple of blockSize using PKCS#7 padding.
func pkcs7Pad(data []byte, blockSize int) ([]byte, error) {
	if blockSize <= 0 || blockSize > 255 {
		return nil, errors.New("block size out of range")
	}
	padding := blockSize - (len(data) % blockSize)
	padText := bytes.Repeat([]byte{byte(padding)}, padding)
	return append(data, padText...), nil
}

// pkcs7Unpad removes PKCS#7 padding from data.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if blockSize <= 0 {
		return nil, errors.New("block size must be positive")
	}
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("data length is not a multiple of block size")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, errors.New("invalid pkcs7 padding: padding size is zero or exceeds block size")
	}
	for i := 0; i < padding; i++ {
		if data[len(data)-padding+i] != byte(padding) {
			return nil, errors.New("invalid pkcs7 padding: padding bytes are inconsistent")
		}
	}
	return data[:len(data)-padding], nil
}

// Encrypt encrypts plaintext with AES-256-CBC under a fresh random IV and
// returns base64(hex(iv) + hex(ciphertext)).
func Encrypt(plainText string, key []byte) (string, error) {
	if len(key) != keyLength {
		return "", fmt.Errorf("invalid key length: must be %d bytes for AES-256", keyLength)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create AES cipher: %w", err)
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded, err := pkcs7Pad([]byte(plainText), aesBlockSize)
	if err != nil {
		return "", fmt.Errorf("failed to pad plaintext: %w", err)
	}

	cipherText := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(cipherText, padded)

	combined := hex.EncodeToString(iv) + hex.EncodeToString(cipherText)
	return base64.StdEncoding.EncodeToString([]byte(combined)), nil
}

// Decrypt reverses Encrypt.
func Decrypt(cipherTextBase64 string, key []byte) (string, error) {
	if len(key) != keyLength {
		return "", fmt.Errorf("invalid key length: must be %d bytes for AES-256", keyLength)
	}

	decoded, err := base64.StdEncoding.DecodeString(cipherTextBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	combinedHex := string(decoded)
	if len(combinedHex) < ivHexLength {
		return "", errors.New("invalid ciphertext: too short to contain IV")
	}

	iv, err := hex.DecodeString(combinedHex[:ivHexLength])
	if err != nil {
		return "", fmt.Errorf("failed to decode IV from hex: %w", err)
	}
	cipherText, err := hex.DecodeString(combinedHex[ivHexLength:])
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext from hex: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create AES cipher: %w", err)
	}
	if len(cipherText)%aesBlockSize != 0 {
		return "", errors.New("ciphertext is not a multiple of the block size")
	}

	padded := make([]byte, len(cipherText))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, cipherText)

	plain, err := pkcs7Unpad(padded, aesBlockSize)
	if err != nil {
		return "", fmt.Errorf("failed to unpad plaintext: %w", err)
	}
	return string(plain), nil
}

// EncryptDescriptor serializes a face descriptor and encrypts it for
// storage.
func EncryptDescriptor(descriptor []float64, key []byte) (string, error) {
	raw, err := json.Marshal(descriptor)
	if err != nil {
		return "", fmt.Errorf("failed to serialize descriptor: %w", err)
	}
	return Encrypt(string(raw), key)
}

// DecryptDescriptor decrypts and deserializes a stored face descriptor.
func DecryptDescriptor(encrypted string, key []byte) ([]float64, error) {
	raw, err := Decrypt(encrypted, key)
	if err != nil {
		return nil, err
	}
	var descriptor []float64
	if err := json.Unmarshal([]byte(raw), &descriptor); err != nil {
		return nil, fmt.Errorf("failed to deserialize descriptor: %w", err)
	}
	return descriptor, nil
}

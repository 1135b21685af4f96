package core

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"medishare-backend-go/internal/crypto"
	"medishare-backend-go/internal/db"
	"medishare-backend-go/internal/models"
)

const (
	// matchThreshold is the maximum euclidean distance between the stored
	// descriptor and a frame descriptor for the frame to count as a match.
	matchThreshold = 0.6
	// minDetectionConfidence gates frames: detections below this confidence
	// are ignored entirely and leave the match streak untouched.
	minDetectionConfidence = 0.8
	// requiredConsecutiveMatches is the streak length that completes the
	// challenge. A single mismatching frame resets the streak to zero.
	requiredConsecutiveMatches = 3
	// faceSessionTTL bounds an unfinished challenge; a stale session is
	// discarded and restarted on the next frame.
	faceSessionTTL = 5 * time.Minute
	// grantTTL is how long a completed challenge authorizes views before
	// the sharee must verify again.
	grantTTL = 10 * time.Minute
)

// Frame outcomes reported to the client loop.
const (
	FaceStateVerifying = "verifying"
	FaceStateMatched   = "matched"
	FaceStateSkipped   = "skipped" // low-confidence frame, streak untouched
)

type faceSession struct {
	reference   []float64 // decrypted signup descriptor
	consecutive int
	startedAt   time.Time
}

// faceVerifier implements the FaceVerifier interface with in-memory
// sessions and grants. State is per process; a restart simply makes
// sharees verify again.
type faceVerifier struct {
	userRepo      db.UserRepository
	encryptionKey []byte

	mu       sync.Mutex
	sessions map[string]*faceSession
	grants   map[string]time.Time // key -> expiry

	now func() time.Time
}

// NewFaceVerifier creates a new FaceVerifier instance.
func NewFaceVerifier(userRepo db.UserRepository, encryptionKey []byte) FaceVerifier {
	return &faceVerifier{
		userRepo:      userRepo,
		encryptionKey: encryptionKey,
		sessions:      make(map[string]*faceSession),
		grants:        make(map[string]time.Time),
		now:           time.Now,
	}
}

// SubmitFrame feeds one camera frame into the challenge for
// (userID, reportID). The challenge completes after three consecutive
// matching frames at sufficient detection confidence.
func (v *faceVerifier) SubmitFrame(ctx context.Context, userID, reportID string, descriptor []float64, confidence float64) (*FrameResult, error) {
	if len(descriptor) != models.FaceDescriptorLength {
		return nil, fmt.Errorf("%w: face descriptor must have %d elements", ErrValidation, models.FaceDescriptorLength)
	}

	key := sessionKey(userID, reportID)
	session, err := v.session(ctx, key, userID)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if confidence < minDetectionConfidence {
		return &FrameResult{Consecutive: session.consecutive, State: FaceStateSkipped}, nil
	}

	if euclideanDistance(session.reference, descriptor) <= matchThreshold {
		session.consecutive++
	} else {
		session.consecutive = 0
	}

	if session.consecutive >= requiredConsecutiveMatches {
		v.grants[key] = v.now().Add(grantTTL)
		delete(v.sessions, key)
		return &FrameResult{Matched: true, Consecutive: session.consecutive, State: FaceStateMatched}, nil
	}
	return &FrameResult{Consecutive: session.consecutive, State: FaceStateVerifying}, nil
}

// Stop discards the challenge session, if any.
func (v *faceVerifier) Stop(userID, reportID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.sessions, sessionKey(userID, reportID))
}

// HasGrant reports whether a completed challenge for (userID, reportID) is
// still in effect.
func (v *faceVerifier) HasGrant(userID, reportID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	key := sessionKey(userID, reportID)
	expiry, ok := v.grants[key]
	if !ok {
		return false
	}
	if v.now().After(expiry) {
		delete(v.grants, key)
		return false
	}
	return true
}

// session returns the live challenge session for key, creating one (which
// loads and decrypts the user's stored descriptor) when none exists or the
// existing one has gone stale.
func (v *faceVerifier) session(ctx context.Context, key, userID string) (*faceSession, error) {
	v.mu.Lock()
	if session, ok := v.sessions[key]; ok {
		if v.now().Sub(session.startedAt) <= faceSessionTTL {
			v.mu.Unlock()
			return session, nil
		}
		delete(v.sessions, key)
	}
	v.mu.Unlock()

	// The repository call happens outside the lock.
	user, err := v.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user '%s' for face challenge: %w", userID, err)
	}
	if user.FaceDescriptor == "" {
		return nil, fmt.Errorf("%w: no face descriptor on record for user '%s'", ErrValidation, userID)
	}
	reference, err := crypto.DecryptDescriptor(user.FaceDescriptor, v.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt face descriptor for user '%s': %w", userID, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if session, ok := v.sessions[key]; ok {
		return session, nil
	}
	session := &faceSession{reference: reference, startedAt: v.now()}
	v.sessions[key] = session
	return session, nil
}

func sessionKey(userID, reportID string) string {
	return userID + "|" + reportID
}

func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

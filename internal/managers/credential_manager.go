package managers

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"account-core/internal/goerrors"
)

const (
	// DefaultBcryptCost is the work factor used for every stored digest.
	DefaultBcryptCost = 12

	// KeyLength is the length of activation and reset keys.
	KeyLength = 20

	// TemporaryPasswordLength is the length of the throwaway password set on reset requests.
	TemporaryPasswordLength = 8

	keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// maxPasswordBytes is the input limit of bcrypt.
const maxPasswordBytes = 72

// CredentialMgr hashes and verifies passwords and generates random keys.
type CredentialMgr interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) bool
	GenerateKey() (string, error)
	GenerateTemporaryPassword() (string, error)
}

// CredentialManager hashes with bcrypt. Hash computations are CPU bound, so they run
// through a weighted semaphore that bounds how many happen at the same time.
type CredentialManager struct {
	cost  int
	slots *semaphore.Weighted
}

// NewCredentialManager creates a CredentialManager with the given bcrypt cost and number of
// concurrent hash workers. Costs below bcrypt.MinCost fall back to DefaultBcryptCost.
func NewCredentialManager(cost int, workers int64) CredentialMgr {
	log.Info("Initializing credential manager")
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	if workers < 1 {
		workers = 1
	}

	return &CredentialManager{
		cost:  cost,
		slots: semaphore.NewWeighted(workers),
	}
}

// Hash returns a salted bcrypt digest of plaintext.
func (cm *CredentialManager) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: password must not be empty", goerrors.ErrInvalidPassword)
	}
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("%w: password exceeds %d bytes", goerrors.ErrInvalidPassword, maxPasswordBytes)
	}

	if err := cm.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire hash worker: %w", err)
	}
	defer cm.slots.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), cm.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Any failure, including a malformed
// digest or a cancelled context, is reported as a mismatch.
func (cm *CredentialManager) Verify(ctx context.Context, plaintext, digest string) bool {
	if plaintext == "" || digest == "" {
		return false
	}

	if err := cm.slots.Acquire(ctx, 1); err != nil {
		return false
	}
	defer cm.slots.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// GenerateKey returns a random alphanumeric activation or reset key.
func (cm *CredentialManager) GenerateKey() (string, error) {
	return randomString(KeyLength)
}

// GenerateTemporaryPassword returns a random password that is never disclosed.
func (cm *CredentialManager) GenerateTemporaryPassword() (string, error) {
	return randomString(TemporaryPasswordLength)
}

// ValidKey reports whether key has the shape of an activation or reset key.
func ValidKey(key string) bool {
	if len(key) != KeyLength {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func randomString(length int) (string, error) {
	max := big.NewInt(int64(len(keyAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate random string: %w", err)
		}
		buf[i] = keyAlphabet[n.Int64()]
	}
	return string(buf), nil
}

package domain

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	accountNumberLength = 10
	referenceLength     = 10

	accountNumberAlphabet = "0123456789"
	referenceAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxGenerationAttempts caps the retry loops that resolve identifier
	// collisions. Random generation alone does not guarantee uniqueness;
	// every generated identifier is verified against the store.
	maxGenerationAttempts = 20
)

// ReferenceGenerator produces candidate identifiers for accounts and
// transactions. Candidates are drawn uniformly at random and may collide;
// callers verify them against the store and retry.
type ReferenceGenerator interface {
	// AccountNumber returns a 10-digit numeric string.
	AccountNumber() (string, error)

	// TransactionReference returns a 10-character uppercase alphanumeric string.
	TransactionReference() (string, error)
}

// RandomReferenceGenerator draws identifiers from crypto/rand.
type RandomReferenceGenerator struct{}

// AccountNumber implements ReferenceGenerator.
func (RandomReferenceGenerator) AccountNumber() (string, error) {
	return randomString(accountNumberAlphabet, accountNumberLength)
}

// TransactionReference implements ReferenceGenerator.
func (RandomReferenceGenerator) TransactionReference() (string, error) {
	return randomString(referenceAlphabet, referenceLength)
}

func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw random index: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}

// nextReference generates a transaction reference verified unique against the
// store, retrying on collision up to the attempt budget. Called within the
// posting transaction so the existence check and the insert see the same
// snapshot; the unique index on reference_id remains the final arbiter.
func nextReference(ctx context.Context, gen ReferenceGenerator, transactions TransactionRepository) (string, error) {
	for attempt := 0; attempt < maxGenerationAttempts; attempt++ {
		ref, err := gen.TransactionReference()
		if err != nil {
			return "", fmt.Errorf("failed to generate reference: %w", err)
		}
		exists, err := transactions.ReferenceExists(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("failed to check reference uniqueness: %w", err)
		}
		if !exists {
			return ref, nil
		}
	}
	return "", ErrReferenceExhausted
}

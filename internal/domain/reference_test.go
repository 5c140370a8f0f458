package domain_test

import (
	"strings"
	"testing"

	"github.com/finbank/ledger-service/internal/domain"
)

func TestRandomReferenceGeneratorAccountNumber(t *testing.T) {
	gen := domain.RandomReferenceGenerator{}

	for i := 0; i < 100; i++ {
		number, err := gen.AccountNumber()
		if err != nil {
			t.Fatalf("AccountNumber() error: %v", err)
		}
		if len(number) != 10 {
			t.Fatalf("AccountNumber() = %q, want 10 digits", number)
		}
		for _, c := range number {
			if c < '0' || c > '9' {
				t.Fatalf("AccountNumber() = %q, contains non-digit %q", number, c)
			}
		}
	}
}

func TestRandomReferenceGeneratorTransactionReference(t *testing.T) {
	gen := domain.RandomReferenceGenerator{}
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	for i := 0; i < 100; i++ {
		ref, err := gen.TransactionReference()
		if err != nil {
			t.Fatalf("TransactionReference() error: %v", err)
		}
		if len(ref) != 10 {
			t.Fatalf("TransactionReference() = %q, want 10 characters", ref)
		}
		for _, c := range ref {
			if !strings.ContainsRune(alphabet, c) {
				t.Fatalf("TransactionReference() = %q, contains %q outside alphabet", ref, c)
			}
		}
	}
}

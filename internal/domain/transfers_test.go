package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/finbank/ledger-service/internal/domain"
)

// transferFixture seeds two users, each with one account, and funds the
// sender's.
func transferFixture(t *testing.T) (*ledgerFixture, *domain.Account, *domain.Account) {
	t.Helper()
	f := newLedgerFixture()
	ctx := context.Background()

	f.store.addUser(1, "alice")
	f.store.addUser(2, "bob")

	sender := mustCreateAccount(t, f, 1)
	recipient := mustCreateAccount(t, f, 2)

	if _, err := f.transactions.PostTransaction(ctx, sender.ID, 1, dec(t, "100.00"), "seed", domain.TransactionTypeDeposit); err != nil {
		t.Fatalf("seed deposit failed: %v", err)
	}
	if _, err := f.transactions.PostTransaction(ctx, recipient.ID, 2, dec(t, "10.00"), "seed", domain.TransactionTypeDeposit); err != nil {
		t.Fatalf("seed deposit failed: %v", err)
	}

	return f, sender, recipient
}

func TestTransferConservation(t *testing.T) {
	f, sender, recipient := transferFixture(t)
	ctx := context.Background()

	debit, credit, err := f.transfers.Transfer(ctx, 1, "bob", dec(t, "60.00"))
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	if !debit.Amount.Equal(dec(t, "-60.00")) {
		t.Errorf("debit amount = %s, want -60.00", debit.Amount)
	}
	if !credit.Amount.Equal(dec(t, "60.00")) {
		t.Errorf("credit amount = %s, want 60.00", credit.Amount)
	}
	if debit.AccountID != sender.ID {
		t.Errorf("debit posted to account %d, want %d", debit.AccountID, sender.ID)
	}
	if credit.AccountID != recipient.ID {
		t.Errorf("credit posted to account %d, want %d", credit.AccountID, recipient.ID)
	}
	if debit.Type != domain.TransactionTypeTransfer || credit.Type != domain.TransactionTypeTransfer {
		t.Error("both legs must have type transfer")
	}
	if debit.Description != "Transfer to bob" {
		t.Errorf("debit description = %q", debit.Description)
	}
	if credit.Description != "Transfer from alice" {
		t.Errorf("credit description = %q", credit.Description)
	}
	if debit.ReferenceID == credit.ReferenceID {
		t.Error("legs must carry independent references")
	}

	senderAfter, _ := f.accounts.GetAccount(ctx, sender.ID)
	recipientAfter, _ := f.accounts.GetAccount(ctx, recipient.ID)
	if !senderAfter.Balance.Equal(dec(t, "40.00")) {
		t.Errorf("sender balance = %s, want 40.00", senderAfter.Balance)
	}
	if !recipientAfter.Balance.Equal(dec(t, "70.00")) {
		t.Errorf("recipient balance = %s, want 70.00", recipientAfter.Balance)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	f, sender, recipient := transferFixture(t)
	ctx := context.Background()

	_, _, err := f.transfers.Transfer(ctx, 1, "bob", dec(t, "150.00"))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("Transfer = %v, want ErrInsufficientFunds", err)
	}

	// Neither balance nor ledger may change.
	senderAfter, _ := f.accounts.GetAccount(ctx, sender.ID)
	recipientAfter, _ := f.accounts.GetAccount(ctx, recipient.ID)
	if !senderAfter.Balance.Equal(dec(t, "100.00")) {
		t.Errorf("sender balance = %s, want 100.00", senderAfter.Balance)
	}
	if !recipientAfter.Balance.Equal(dec(t, "10.00")) {
		t.Errorf("recipient balance = %s, want 10.00", recipientAfter.Balance)
	}
	entries, _ := f.transactions.ListTransactionsForAccount(ctx, sender.ID, 10)
	if len(entries) != 1 {
		t.Errorf("sender ledger has %d entries, want 1 (seed only)", len(entries))
	}
}

func TestTransferRecipientNotFound(t *testing.T) {
	f, sender, _ := transferFixture(t)
	ctx := context.Background()

	_, _, err := f.transfers.Transfer(ctx, 1, "mallory", dec(t, "10.00"))
	if !errors.Is(err, domain.ErrRecipientNotFound) {
		t.Fatalf("Transfer = %v, want ErrRecipientNotFound", err)
	}

	// Resolution failures are terminal: no debit leg, no balance change.
	senderAfter, _ := f.accounts.GetAccount(ctx, sender.ID)
	if !senderAfter.Balance.Equal(dec(t, "100.00")) {
		t.Errorf("sender balance = %s, want 100.00", senderAfter.Balance)
	}
	entries, _ := f.transactions.ListTransactionsForAccount(ctx, sender.ID, 10)
	if len(entries) != 1 {
		t.Errorf("sender ledger has %d entries, want 1 (seed only)", len(entries))
	}
}

func TestTransferNoSenderAccount(t *testing.T) {
	f := newLedgerFixture()
	f.store.addUser(1, "alice")
	f.store.addUser(2, "bob")
	mustCreateAccount(t, f, 2)

	_, _, err := f.transfers.Transfer(context.Background(), 1, "bob", dec(t, "10.00"))
	if !errors.Is(err, domain.ErrNoSenderAccount) {
		t.Fatalf("Transfer = %v, want ErrNoSenderAccount", err)
	}
}

func TestTransferNoRecipientAccount(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	f.store.addUser(1, "alice")
	f.store.addUser(2, "bob")
	sender := mustCreateAccount(t, f, 1)
	if _, err := f.transactions.PostTransaction(ctx, sender.ID, 1, dec(t, "50.00"), "seed", domain.TransactionTypeDeposit); err != nil {
		t.Fatalf("seed deposit failed: %v", err)
	}

	_, _, err := f.transfers.Transfer(ctx, 1, "bob", dec(t, "10.00"))
	if !errors.Is(err, domain.ErrNoRecipientAccount) {
		t.Fatalf("Transfer = %v, want ErrNoRecipientAccount", err)
	}
}

func TestTransferToSelfRejected(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	f.store.addUser(1, "alice")
	sender := mustCreateAccount(t, f, 1)
	if _, err := f.transactions.PostTransaction(ctx, sender.ID, 1, dec(t, "50.00"), "seed", domain.TransactionTypeDeposit); err != nil {
		t.Fatalf("seed deposit failed: %v", err)
	}

	_, _, err := f.transfers.Transfer(ctx, 1, "alice", dec(t, "10.00"))
	if !errors.Is(err, domain.ErrSameAccount) {
		t.Fatalf("Transfer to self = %v, want ErrSameAccount", err)
	}
}

func TestTransferUsesFirstAccounts(t *testing.T) {
	// Both parties hold several accounts; the transfer funds from and lands
	// on each party's first (oldest) account.
	f := newLedgerFixture()
	ctx := context.Background()
	f.store.addUser(1, "alice")
	f.store.addUser(2, "bob")

	senderFirst := mustCreateAccount(t, f, 1)
	mustCreateAccount(t, f, 1)
	recipientFirst := mustCreateAccount(t, f, 2)
	mustCreateAccount(t, f, 2)

	if _, err := f.transactions.PostTransaction(ctx, senderFirst.ID, 1, dec(t, "30.00"), "seed", domain.TransactionTypeDeposit); err != nil {
		t.Fatalf("seed deposit failed: %v", err)
	}

	debit, credit, err := f.transfers.Transfer(ctx, 1, "bob", dec(t, "30.00"))
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if debit.AccountID != senderFirst.ID {
		t.Errorf("debit account = %d, want the sender's first account %d", debit.AccountID, senderFirst.ID)
	}
	if credit.AccountID != recipientFirst.ID {
		t.Errorf("credit account = %d, want the recipient's first account %d", credit.AccountID, recipientFirst.ID)
	}
}

func TestTransferExampleScenario(t *testing.T) {
	// Account A holds 100.00: withdrawing 150.00 fails, withdrawing 40.00
	// leaves 60.00, transferring 60.00 to B (10.00) empties A and leaves B
	// with 70.00.
	f, sender, recipient := transferFixture(t)
	ctx := context.Background()

	if _, err := f.transactions.PostTransaction(ctx, sender.ID, 1, dec(t, "150.00"), "overdraw", domain.TransactionTypeWithdrawal); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("overdraw = %v, want ErrInsufficientFunds", err)
	}
	senderAfter, _ := f.accounts.GetAccount(ctx, sender.ID)
	if !senderAfter.Balance.Equal(dec(t, "100.00")) {
		t.Fatalf("balance after failed withdrawal = %s, want 100.00", senderAfter.Balance)
	}

	withdrawal, err := f.transactions.PostTransaction(ctx, sender.ID, 1, dec(t, "40.00"), "cash", domain.TransactionTypeWithdrawal)
	if err != nil {
		t.Fatalf("withdrawal failed: %v", err)
	}
	if !withdrawal.Amount.Equal(dec(t, "-40.00")) {
		t.Fatalf("withdrawal amount = %s, want -40.00", withdrawal.Amount)
	}

	if _, _, err := f.transfers.Transfer(ctx, 1, "bob", dec(t, "60.00")); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	senderAfter, _ = f.accounts.GetAccount(ctx, sender.ID)
	recipientAfter, _ := f.accounts.GetAccount(ctx, recipient.ID)
	if !senderAfter.Balance.Equal(dec(t, "0.00")) {
		t.Errorf("sender balance = %s, want 0.00", senderAfter.Balance)
	}
	if !recipientAfter.Balance.Equal(dec(t, "70.00")) {
		t.Errorf("recipient balance = %s, want 70.00", recipientAfter.Balance)
	}
}

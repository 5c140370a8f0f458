package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidateAmount validates that an amount is a positive decimal with at most
// two fractional digits. Callers hand the ledger core an unsigned magnitude;
// the sign is derived from the transaction type.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: at most two decimal places", ErrInvalidAmount)
	}
	return nil
}

// ValidateAccountType validates that the account type is one of the
// supported kinds.
func ValidateAccountType(accountType AccountType) error {
	switch accountType {
	case AccountTypeChecking, AccountTypeSavings:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, accountType)
	}
}

// ValidatePostingType validates that a single-account posting is a deposit
// or a withdrawal. Transfer legs are created only by the transfer flow.
func ValidatePostingType(txType TransactionType) error {
	switch txType {
	case TransactionTypeDeposit, TransactionTypeWithdrawal:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, txType)
	}
}

// ValidateDescription bounds transaction descriptions.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLen {
		return fmt.Errorf("description exceeds %d characters", MaxDescriptionLen)
	}
	return nil
}

// ValidateCurrencyCode validates that a currency code follows ISO 4217 format.
func ValidateCurrencyCode(code string) error {
	if len(code) != 3 {
		return fmt.Errorf("currency code must be 3 characters (ISO 4217)")
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return fmt.Errorf("currency code must contain only uppercase letters")
		}
	}
	return nil
}

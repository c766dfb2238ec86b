package accounting

import (
	"fmt"

	"github.com/atelierhq/atelier_finance_app/internal/apperrors"
	"github.com/atelierhq/atelier_finance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ValidateLine checks the single-line invariant: both sides non-negative and
// exactly one of (debit, credit) non-zero.
func ValidateLine(line domain.JournalLine) error {
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return fmt.Errorf("%w: line amounts must be non-negative for account %s", apperrors.ErrValidation, line.AccountCode)
	}
	debitSet := line.Debit.IsPositive()
	creditSet := line.Credit.IsPositive()
	if debitSet == creditSet {
		// Covers both zero/zero and debit-and-credit lines.
		return fmt.Errorf("%w: exactly one of debit and credit must be non-zero for account %s", apperrors.ErrValidation, line.AccountCode)
	}
	return nil
}

// ValidateEntryBalance checks the double-entry invariant for a set of lines.
// Sums are compared with exact decimal equality; no rounding slack is permitted.
// This is used at both creation and posting time.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: entry must have at least two lines", apperrors.ErrValidation)
	}

	debitsSum := decimal.Zero
	creditsSum := decimal.Zero
	for _, line := range lines {
		if err := ValidateLine(line); err != nil {
			return err
		}
		debitsSum = debitsSum.Add(line.Debit)
		creditsSum = creditsSum.Add(line.Credit)
	}

	if !debitsSum.Equal(creditsSum) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalanced, debitsSum.String(), creditsSum.String())
	}
	return nil
}

// EntryAmount computes the economic value of a balanced entry.
// For a balanced entry the debit side equals the credit side, so the
// debit total represents the total money movement.
func EntryAmount(lines []domain.JournalLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Debit)
	}
	return total
}

// ReversalLines returns a copy of the given lines with debit and credit
// swapped per line, suitable for a reversing entry. Line identity is not
// carried over; the caller assigns new ids when creating the entry.
func ReversalLines(lines []domain.JournalLine) []domain.JournalLine {
	reversed := make([]domain.JournalLine, len(lines))
	for i, line := range lines {
		reversed[i] = domain.JournalLine{
			AccountCode: line.AccountCode,
			Debit:       line.Credit,
			Credit:      line.Debit,
			Description: line.Description,
			Position:    line.Position,
		}
	}
	return reversed
}

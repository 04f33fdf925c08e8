package ledger

import "math/bits"

// splitCheck is one rule of the validation pipeline. Checks are pure
// functions of the proposed splits and never touch storage.
type splitCheck func(splits []SplitInput) error

// splitChecks run in this order; the first failure is reported.
var splitChecks = []splitCheck{
	checkMinimumSplitCount,
	checkPositiveAmounts,
	checkSplitSides,
	checkDoubleEntryBalance,
}

// ValidateSplits runs the validation pipeline over a proposed split list.
func ValidateSplits(splits []SplitInput) error {
	for _, check := range splitChecks {
		if err := check(splits); err != nil {
			return err
		}
	}
	return nil
}

func checkMinimumSplitCount(splits []SplitInput) error {
	if len(splits) < 2 {
		return invalidf("Transaction must have at least 2 splits")
	}
	return nil
}

func checkPositiveAmounts(splits []SplitInput) error {
	for _, split := range splits {
		if split.AmountMinor <= 0 {
			return invalidf("All split amounts must be greater than 0")
		}
	}
	return nil
}

func checkSplitSides(splits []SplitInput) error {
	for _, split := range splits {
		if !split.Side.Valid() {
			return invalidf("Invalid split side: %s", split.Side)
		}
	}
	return nil
}

// checkDoubleEntryBalance relies on checkPositiveAmounts having run, so every
// amount converts to uint64 without loss.
func checkDoubleEntryBalance(splits []SplitInput) error {
	var debits, credits uint64
	var carry uint64
	for _, split := range splits {
		switch split.Side {
		case Debit:
			debits, carry = bits.Add64(debits, uint64(split.AmountMinor), 0)
		case Credit:
			credits, carry = bits.Add64(credits, uint64(split.AmountMinor), 0)
		}
		if carry != 0 {
			return invalidf("Split amounts overflow the supported range")
		}
	}
	if debits != credits {
		return invalidf("Double-entry violation: sum of debits (%d) must equal sum of credits (%d)", debits, credits)
	}
	return nil
}

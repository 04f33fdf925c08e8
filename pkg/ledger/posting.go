package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Post validates, authorizes and stores a transaction as one unit, then
// returns its materialized view.
func (l *Ledger) Post(ctx context.Context, actorID string, req PostRequest) (*PostedTransaction, error) {
	var posted *PostedTransaction
	err := l.store.Update(ctx, func(repo Repository) error {
		var err error
		posted, err = l.post(ctx, repo, actorID, req)
		return err
	})
	if err != nil {
		l.logger.Debug("Transaction rejected",
			slog.String("actor", actorID),
			slog.String("currency", req.Currency),
			slog.Any("error", err))
		return nil, err
	}

	l.logger.Info("Transaction posted",
		slog.String("id", posted.ID),
		slog.String("kind", string(posted.Kind)),
		slog.String("date", posted.TxnDate.String()),
		slog.Int("splits", len(posted.Splits)))
	return posted, nil
}

// post runs inside an open Update so opening-balance postings can share the
// transaction that creates their account.
func (l *Ledger) post(ctx context.Context, repo Repository, actorID string, req PostRequest) (*PostedTransaction, error) {
	if err := ValidateSplits(req.Splits); err != nil {
		return nil, err
	}

	currencyCode := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currencyCode == "" {
		return nil, invalidf("currency is required")
	}
	if req.TxnDate.IsZero() {
		return nil, invalidf("txnDate is required")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, invalidf("description is required")
	}

	currency, err := repo.FindCurrency(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load currency: %w", err)
	}
	if currency == nil {
		return nil, invalidf("Invalid currency: %s", req.Currency)
	}

	accounts, accountsByID, err := resolvePostingAccounts(ctx, repo, req.Splits, currency.Code)
	if err != nil {
		return nil, err
	}
	if err := authorizePosting(ctx, repo, actorID, accounts, req.Mode, req.HouseholdID); err != nil {
		return nil, err
	}
	if req.Mode.IsHousehold() && req.HouseholdID != "" {
		exists, err := repo.HouseholdExists(ctx, req.HouseholdID)
		if err != nil {
			return nil, fmt.Errorf("failed to load household: %w", err)
		}
		if !exists {
			return nil, invalidf("Household not found: %s", req.HouseholdID)
		}
	}
	tags, err := resolveCategoryTags(ctx, repo, actorID, req.Splits)
	if err != nil {
		return nil, err
	}

	now := l.timestamp()
	txn := &Transaction{
		ID:          l.newID(),
		CreatedBy:   actorID,
		TxnDate:     req.TxnDate,
		Currency:    currency.Code,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Mode.IsHousehold() {
		txn.HouseholdID = req.HouseholdID
	}
	for _, input := range req.Splits {
		txn.Splits = append(txn.Splits, Split{
			ID:            l.newID(),
			TransactionID: txn.ID,
			AccountID:     input.AccountID,
			Side:          input.Side,
			AmountMinor:   input.AmountMinor,
			CategoryTagID: input.CategoryTagID,
		})
	}

	if err := repo.SaveTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	return materialize(txn, accountsByID, tags), nil
}

// SplitEffect is the signed change a split makes to its account's balance
// in the account type's own convention.
func SplitEffect(accountType AccountType, side Side, amountMinor int64) int64 {
	if side == accountType.NormalSide() {
		return amountMinor
	}
	return -amountMinor
}

// DeriveKind classifies a transaction by the account types it touches.
func DeriveKind(types []AccountType) TxnKind {
	balanceSheetOnly := true
	hasExpense, hasIncome := false, false
	for _, t := range types {
		switch t {
		case Asset, Liability, Equity:
		case Expense:
			balanceSheetOnly = false
			hasExpense = true
		case Income:
			balanceSheetOnly = false
			hasIncome = true
		default:
			balanceSheetOnly = false
		}
	}

	switch {
	case balanceSheetOnly:
		return KindTransfer
	case hasExpense:
		return KindExpense
	case hasIncome:
		return KindIncome
	default:
		return KindTransfer
	}
}

// materialize builds the view of txn. Every split account must be present in
// accounts; tags may omit untagged splits.
func materialize(txn *Transaction, accounts map[string]Account, tags map[string]CategoryTag) *PostedTransaction {
	posted := &PostedTransaction{
		ID:          txn.ID,
		CreatedBy:   txn.CreatedBy,
		HouseholdID: txn.HouseholdID,
		TxnDate:     txn.TxnDate,
		Currency:    txn.Currency,
		Description: txn.Description,
		CreatedAt:   txn.CreatedAt,
		UpdatedAt:   txn.UpdatedAt,
	}

	types := make([]AccountType, 0, len(txn.Splits))
	for _, split := range txn.Splits {
		account := accounts[split.AccountID]
		types = append(types, account.Type)

		ps := PostedSplit{
			ID:            split.ID,
			AccountID:     split.AccountID,
			AccountName:   account.Name,
			AccountType:   account.Type,
			Side:          split.Side,
			AmountMinor:   split.AmountMinor,
			EffectMinor:   SplitEffect(account.Type, split.Side, split.AmountMinor),
			CategoryTagID: split.CategoryTagID,
		}
		if tag, ok := tags[split.CategoryTagID]; ok {
			ps.CategoryTagName = tag.Name
		}
		posted.Splits = append(posted.Splits, ps)
	}
	posted.Kind = DeriveKind(types)

	return posted
}

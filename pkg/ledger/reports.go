package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
)

// BalanceTimeseries returns one point per calendar day in [from, to] carrying
// the account's running balance. Visibility follows Balance.
func (l *Ledger) BalanceTimeseries(ctx context.Context, actorID, accountID string, from, to date.Date, householdID string) (*AccountTimeseries, error) {
	if from.IsZero() || to.IsZero() {
		return nil, invalidf("dateFrom and dateTo are required")
	}
	if from.After(to) {
		return nil, invalidf("dateFrom must be before or equal to dateTo")
	}

	var series *AccountTimeseries
	err := l.store.View(ctx, func(repo Repository) error {
		accounts, err := loadReadableAccounts(ctx, repo, actorID, []string{accountID}, householdID)
		if err != nil {
			return err
		}
		account := accounts[0]

		opening, err := repo.RawBalances(ctx, []string{account.ID}, from.Add(-1))
		if err != nil {
			return fmt.Errorf("failed to compute opening balance: %w", err)
		}
		daily, err := repo.DailyNet(ctx, account.ID, from, to)
		if err != nil {
			return fmt.Errorf("failed to aggregate daily movements: %w", err)
		}

		series = &AccountTimeseries{
			AccountID:   account.ID,
			AccountName: account.Name,
			AccountType: account.Type,
			Currency:    account.Currency,
			Points:      runningBalances(account.Type, opening[account.ID], daily, from, to),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

// runningBalances fills every day of [from, to], treating days absent from
// daily as zero movement. Raw amounts are debit minus credit.
func runningBalances(accountType AccountType, openingRaw int64, daily map[date.Date]int64, from, to date.Date) []TimeseriesPoint {
	points := make([]TimeseriesPoint, 0, from.DaysUntil(to)+1)
	running := accountType.Signed(openingRaw)
	for day := from; !day.After(to); day = day.Add(1) {
		running += accountType.Signed(daily[day])
		points = append(points, TimeseriesPoint{Date: day, BalanceMinor: running})
	}
	return points
}

// MonthlyExpenses totals expense splits posted in month per (expense
// account, category tag) pair. Individual mode covers the actor's own
// EXPENSE accounts; household mode covers transactions tagged with the
// household and requires active membership.
func (l *Ledger) MonthlyExpenses(ctx context.Context, actorID string, month date.Month, mode Mode, householdID string) ([]MonthlyExpense, error) {
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	if month.IsZero() {
		return nil, invalidf("period is required")
	}

	var rows []ExpenseRow
	err = l.store.View(ctx, func(repo Repository) error {
		scope := ExpenseScope{OwnerID: actorID}
		if mode == Household {
			if err := requireActiveMember(ctx, repo, householdID, actorID); err != nil {
				return err
			}
			scope = ExpenseScope{HouseholdID: householdID}
		}

		var err error
		rows, err = repo.ExpenseTotals(ctx, scope, month.First(), month.Next().First())
		if err != nil {
			return fmt.Errorf("failed to aggregate expenses: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	expenses := make([]MonthlyExpense, 0, len(rows))
	for _, row := range rows {
		expenses = append(expenses, MonthlyExpense{
			ExpenseAccountID:   row.AccountID,
			ExpenseAccountName: row.AccountName,
			CategoryTagID:      row.CategoryID,
			CategoryTagName:    row.CategoryName,
			Currency:           row.Currency,
			NetMinor:           Expense.Signed(row.RawMinor),
		})
	}
	sortExpenses(expenses)
	return expenses, nil
}

// sortExpenses orders by account name, then category name with the
// uncategorized group last. Ids break ties between equal names.
func sortExpenses(expenses []MonthlyExpense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		a, b := expenses[i], expenses[j]
		if a.ExpenseAccountName != b.ExpenseAccountName {
			return a.ExpenseAccountName < b.ExpenseAccountName
		}
		if a.ExpenseAccountID != b.ExpenseAccountID {
			return a.ExpenseAccountID < b.ExpenseAccountID
		}
		if (a.CategoryTagID == "") != (b.CategoryTagID == "") {
			return b.CategoryTagID == ""
		}
		if a.CategoryTagName != b.CategoryTagName {
			return a.CategoryTagName < b.CategoryTagName
		}
		return a.CategoryTagID < b.CategoryTagID
	})
}

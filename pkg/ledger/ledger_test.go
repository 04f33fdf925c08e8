package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
	"github.com/shunichi-ikebuchi/pocketr/pkg/memstore"
)

type fixture struct {
	ctx    context.Context
	ledger *ledger.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New(
		ledger.Currency{Code: "EUR", MinorUnit: 2, Name: "Euro"},
		ledger.Currency{Code: "USD", MinorUnit: 2, Name: "US Dollar"},
		ledger.Currency{Code: "JPY", MinorUnit: 0, Name: "Japanese Yen"},
	)
	clock := func() time.Time { return time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC) }
	return &fixture{
		ctx:    context.Background(),
		ledger: ledger.New(store, ledger.WithClock(clock)),
	}
}

func (f *fixture) user(t *testing.T, email string) string {
	t.Helper()
	u, err := f.ledger.RegisterUser(f.ctx, email)
	require.NoError(t, err)
	return u.ID
}

func (f *fixture) account(t *testing.T, ownerID, name string, typ ledger.AccountType, currency string) ledger.Account {
	t.Helper()
	a, err := f.ledger.CreateAccount(f.ctx, ownerID, ledger.NewAccount{Name: name, Type: string(typ), Currency: currency})
	require.NoError(t, err)
	return *a
}

func (f *fixture) post(t *testing.T, actorID string, day string, splits ...ledger.SplitInput) *ledger.PostedTransaction {
	t.Helper()
	posted, err := f.ledger.Post(f.ctx, actorID, ledger.PostRequest{
		Currency:    "EUR",
		TxnDate:     date.MustParse(day),
		Description: "test " + day,
		Mode:        ledger.Individual,
		Splits:      splits,
	})
	require.NoError(t, err)
	return posted
}

func debit(account ledger.Account, amount int64) ledger.SplitInput {
	return ledger.SplitInput{AccountID: account.ID, Side: ledger.Debit, AmountMinor: amount}
}

func credit(account ledger.Account, amount int64) ledger.SplitInput {
	return ledger.SplitInput{AccountID: account.ID, Side: ledger.Credit, AmountMinor: amount}
}

func tagged(split ledger.SplitInput, tagID string) ledger.SplitInput {
	split.CategoryTagID = tagID
	return split
}

func balanceOf(t *testing.T, f *fixture, actorID string, account ledger.Account, day string) int64 {
	t.Helper()
	result, err := f.ledger.Balance(f.ctx, actorID, account.ID, date.MustParse(day), "")
	require.NoError(t, err)
	return result.BalanceMinor
}

func requireKind(t *testing.T, err error, kind ledger.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, ledger.KindOf(err), "error: %v", err)
}

func TestPostMaterializesEffectsAndKind(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	checking := f.account(t, alice, "Checking", ledger.Asset, "EUR")
	groceries := f.account(t, alice, "Groceries", ledger.Expense, "EUR")

	posted := f.post(t, alice, "2026-02-10", debit(groceries, 2500), credit(checking, 2500))

	assert.Equal(t, ledger.KindExpense, posted.Kind)
	assert.Empty(t, posted.HouseholdID)
	require.Len(t, posted.Splits, 2)
	assert.Equal(t, "Groceries", posted.Splits[0].AccountName)
	assert.Equal(t, int64(2500), posted.Splits[0].EffectMinor)
	assert.Equal(t, "Checking", posted.Splits[1].AccountName)
	assert.Equal(t, int64(-2500), posted.Splits[1].EffectMinor)
	assert.Equal(t, "test 2026-02-10", posted.Description)
}

func TestPostRejectsUnbalancedSplits(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	checking := f.account(t, alice, "Checking", ledger.Asset, "EUR")
	groceries := f.account(t, alice, "Groceries", ledger.Expense, "EUR")

	_, err := f.ledger.Post(f.ctx, alice, ledger.PostRequest{
		Currency:    "EUR",
		TxnDate:     date.MustParse("2026-02-10"),
		Description: "Groceries",
		Splits:      []ledger.SplitInput{debit(groceries, 5000), credit(checking, 4500)},
	})

	requireKind(t, err, ledger.InvalidRequest)
	assert.Contains(t, err.Error(), "5000")
	assert.Contains(t, err.Error(), "4500")

	page, err := f.ledger.ListTransactions(f.ctx, alice, ledger.TransactionQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestPostResolutionErrors(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	checking := f.account(t, alice, "Checking", ledger.Asset, "EUR")
	groceries := f.account(t, alice, "Groceries", ledger.Expense, "EUR")
	dollars := f.account(t, alice, "Dollars", ledger.Asset, "USD")
	bobs := f.account(t, bob, "Bob Checking", ledger.Asset, "EUR")
	aliceTag, err := f.ledger.CreateCategory(f.ctx, alice, "Food", "")
	require.NoError(t, err)
	bobTag, err := f.ledger.CreateCategory(f.ctx, bob, "Fun", "#ff0000")
	require.NoError(t, err)

	tests := []struct {
		name     string
		mutate   func(*ledger.PostRequest)
		kind     ledger.Kind
		contains string
	}{
		{
			name:     "unknown currency",
			mutate:   func(r *ledger.PostRequest) { r.Currency = "XXX" },
			kind:     ledger.InvalidRequest,
			contains: "Invalid currency: XXX",
		},
		{
			name:     "blank description",
			mutate:   func(r *ledger.PostRequest) { r.Description = "   " },
			kind:     ledger.InvalidRequest,
			contains: "description",
		},
		{
			name:     "missing date",
			mutate:   func(r *ledger.PostRequest) { r.TxnDate = date.Date{} },
			kind:     ledger.InvalidRequest,
			contains: "txnDate",
		},
		{
			name: "missing account",
			mutate: func(r *ledger.PostRequest) {
				r.Splits[1].AccountID = "does-not-exist"
			},
			kind:     ledger.InvalidRequest,
			contains: "does-not-exist",
		},
		{
			name: "blank account id",
			mutate: func(r *ledger.PostRequest) {
				r.Splits[1].AmountMinor = 600
				r.Splits = append(r.Splits, ledger.SplitInput{AccountID: "", Side: ledger.Credit, AmountMinor: 600})
			},
			kind:     ledger.InvalidRequest,
			contains: "accountId is required (split 2)",
		},
		{
			name: "unknown household for own accounts",
			mutate: func(r *ledger.PostRequest) {
				r.Mode = ledger.Household
				r.HouseholdID = "hh-unknown"
			},
			kind:     ledger.InvalidRequest,
			contains: "Household not found: hh-unknown",
		},
		{
			name: "currency mismatch",
			mutate: func(r *ledger.PostRequest) {
				r.Splits[1].AccountID = dollars.ID
			},
			kind:     ledger.InvalidRequest,
			contains: "Dollars",
		},
		{
			name: "foreign account in individual mode",
			mutate: func(r *ledger.PostRequest) {
				r.Splits[1].AccountID = bobs.ID
			},
			kind:     ledger.Forbidden,
			contains: "individual mode",
		},
		{
			name: "missing category tag",
			mutate: func(r *ledger.PostRequest) {
				r.Splits[0].CategoryTagID = "no-such-tag"
			},
			kind:     ledger.InvalidRequest,
			contains: "no-such-tag",
		},
		{
			name: "foreign category tag",
			mutate: func(r *ledger.PostRequest) {
				r.Splits[0].CategoryTagID = bobTag.ID
			},
			kind:     ledger.Forbidden,
			contains: "Fun",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ledger.PostRequest{
				Currency:    "EUR",
				TxnDate:     date.MustParse("2026-02-10"),
				Description: "Lunch",
				Mode:        ledger.Individual,
				Splits: []ledger.SplitInput{
					tagged(debit(groceries, 1200), aliceTag.ID),
					credit(checking, 1200),
				},
			}
			tt.mutate(&req)

			_, err := f.ledger.Post(f.ctx, alice, req)
			requireKind(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestCreateAccountWithOpeningBalance(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")

	checking, err := f.ledger.CreateAccount(f.ctx, alice, ledger.NewAccount{
		Name:                "Checking",
		Type:                "ASSET",
		Currency:            "EUR",
		OpeningBalanceMinor: 100000,
		OpeningBalanceDate:  date.MustParse("2026-02-15"),
	})
	require.NoError(t, err)

	page, err := f.ledger.ListTransactions(f.ctx, alice, ledger.TransactionQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	txn := page.Items[0]
	assert.Equal(t, "Opening balance - Checking", txn.Description)
	assert.Equal(t, date.MustParse("2026-02-15"), txn.TxnDate)
	assert.Equal(t, ledger.KindTransfer, txn.Kind)
	require.Len(t, txn.Splits, 2)
	assert.Equal(t, checking.ID, txn.Splits[0].AccountID)
	assert.Equal(t, ledger.Debit, txn.Splits[0].Side)
	assert.Equal(t, int64(100000), txn.Splits[0].AmountMinor)
	assert.Equal(t, ledger.OpeningEquityName, txn.Splits[1].AccountName)
	assert.Equal(t, ledger.Equity, txn.Splits[1].AccountType)
	assert.Equal(t, ledger.Credit, txn.Splits[1].Side)
	assert.Equal(t, int64(100000), txn.Splits[1].AmountMinor)

	assert.Equal(t, int64(100000), balanceOf(t, f, alice, *checking, "2026-02-15"))
	assert.Equal(t, int64(0), balanceOf(t, f, alice, *checking, "2026-02-14"))

	equity := ledger.Account{ID: txn.Splits[1].AccountID}
	assert.Equal(t, int64(100000), balanceOf(t, f, alice, equity, "2026-02-15"))
}

func TestOpeningBalanceReusesEquityAccount(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")

	_, err := f.ledger.CreateAccount(f.ctx, alice, ledger.NewAccount{
		Name: "Checking", Type: "ASSET", Currency: "EUR", OpeningBalanceMinor: 100000,
	})
	require.NoError(t, err)
	overdrawn, err := f.ledger.CreateAccount(f.ctx, alice, ledger.NewAccount{
		Name: "Overdrawn", Type: "asset", Currency: "EUR", OpeningBalanceMinor: -2500,
	})
	require.NoError(t, err)
	_, err = f.ledger.CreateAccount(f.ctx, alice, ledger.NewAccount{
		Name: "Travel", Type: "ASSET", Currency: "USD", OpeningBalanceMinor: 700,
	})
	require.NoError(t, err)

	accounts, err := f.ledger.ListAccounts(f.ctx, alice, ledger.Individual, "")
	require.NoError(t, err)
	var equities []ledger.Account
	for _, a := range accounts {
		if a.Type == ledger.Equity {
			equities = append(equities, a)
		}
	}
	require.Len(t, equities, 2)
	assert.ElementsMatch(t, []string{"EUR", "USD"}, []string{equities[0].Currency, equities[1].Currency})

	// Defaults to the clock's date and inverts sides for negative amounts.
	assert.Equal(t, int64(-2500), balanceOf(t, f, alice, *overdrawn, "2026-03-01"))
	assert.Equal(t, int64(0), balanceOf(t, f, alice, *overdrawn, "2026-02-28"))
	eur := equities[0]
	if eur.Currency != "EUR" {
		eur = equities[1]
	}
	assert.Equal(t, int64(97500), balanceOf(t, f, alice, eur, "2026-03-01"))
}

func TestCreateAccountRejections(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	f.account(t, alice, "Checking", ledger.Asset, "EUR")

	tests := []struct {
		name string
		req  ledger.NewAccount
		kind ledger.Kind
		msg  string
	}{
		{
			name: "equity",
			req:  ledger.NewAccount{Name: "Mine", Type: "EQUITY", Currency: "EUR"},
			kind: ledger.InvalidRequest,
			msg:  "EQUITY accounts are system-managed and cannot be created manually",
		},
		{
			name: "unknown type",
			req:  ledger.NewAccount{Name: "Mine", Type: "STOCK", Currency: "EUR"},
			kind: ledger.InvalidRequest,
			msg:  "Invalid account type: STOCK",
		},
		{
			name: "opening balance on liability",
			req:  ledger.NewAccount{Name: "Card", Type: "LIABILITY", Currency: "EUR", OpeningBalanceMinor: 10},
			kind: ledger.InvalidRequest,
			msg:  "openingBalanceMinor is supported only for ASSET accounts",
		},
		{
			name: "opening date without amount",
			req:  ledger.NewAccount{Name: "Cash", Type: "ASSET", Currency: "EUR", OpeningBalanceDate: date.MustParse("2026-01-01")},
			kind: ledger.InvalidRequest,
			msg:  "openingBalanceDate requires non-zero openingBalanceMinor",
		},
		{
			name: "unknown currency",
			req:  ledger.NewAccount{Name: "Cash", Type: "ASSET", Currency: "ZZZ"},
			kind: ledger.InvalidRequest,
			msg:  "Invalid currency: ZZZ",
		},
		{
			name: "blank name",
			req:  ledger.NewAccount{Name: "  ", Type: "ASSET", Currency: "EUR"},
			kind: ledger.InvalidRequest,
			msg:  "Account name is required",
		},
		{
			name: "duplicate key",
			req:  ledger.NewAccount{Name: " Checking ", Type: "ASSET", Currency: "EUR"},
			kind: ledger.Conflict,
			msg:  "Account 'Checking' already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.CreateAccount(f.ctx, alice, tt.req)
			requireKind(t, err, tt.kind)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestRenameAccount(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	checking := f.account(t, alice, "Checking", ledger.Asset, "EUR")
	f.account(t, alice, "Savings", ledger.Asset, "EUR")

	renamed, err := f.ledger.RenameAccount(f.ctx, alice, checking.ID, " Main ")
	require.NoError(t, err)
	assert.Equal(t, "Main", renamed.Name)

	_, err = f.ledger.RenameAccount(f.ctx, alice, checking.ID, "Savings")
	requireKind(t, err, ledger.Conflict)

	_, err = f.ledger.RenameAccount(f.ctx, bob, checking.ID, "Hijacked")
	requireKind(t, err, ledger.Forbidden)

	_, err = f.ledger.RenameAccount(f.ctx, alice, "missing", "Other")
	requireKind(t, err, ledger.NotFound)
}

// For every account type the final balance equals the sum of reported effects.
func TestBalanceMatchesSumOfEffects(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	cash := f.account(t, alice, "Cash", ledger.Asset, "EUR")
	card := f.account(t, alice, "Card", ledger.Liability, "EUR")
	salary := f.account(t, alice, "Salary", ledger.Income, "EUR")
	rent := f.account(t, alice, "Rent", ledger.Expense, "EUR")
	opening, err := f.ledger.CreateAccount(f.ctx, alice, ledger.NewAccount{
		Name: "Wallet", Type: "ASSET", Currency: "EUR", OpeningBalanceMinor: 5000,
		OpeningBalanceDate: date.MustParse("2026-01-01"),
	})
	require.NoError(t, err)

	var posted []*ledger.PostedTransaction
	posted = append(posted,
		f.post(t, alice, "2026-01-05", debit(cash, 300000), credit(salary, 300000)),
		f.post(t, alice, "2026-01-06", debit(rent, 120000), credit(cash, 100000), credit(card, 20000)),
		f.post(t, alice, "2026-01-20", debit(card, 15000), credit(cash, 15000)),
		f.post(t, alice, "2026-01-21", debit(salary, 1000), credit(cash, 1000)),
		f.post(t, alice, "2026-01-22", debit(cash, 4000), credit(*opening, 4000)),
	)

	effects := map[string]int64{opening.ID: 5000}
	for _, p := range posted {
		for _, s := range p.Splits {
			effects[s.AccountID] += s.EffectMinor
		}
	}

	for _, account := range []ledger.Account{cash, card, salary, rent, *opening} {
		t.Run(string(account.Type)+" "+account.Name, func(t *testing.T) {
			assert.Equal(t, effects[account.ID], balanceOf(t, f, alice, account, "2026-01-31"))
		})
	}
	assert.Equal(t, int64(188000), effects[cash.ID])
	assert.Equal(t, int64(1000), effects[opening.ID])
	assert.Equal(t, int64(5000), effects[card.ID])
	assert.Equal(t, int64(299000), effects[salary.ID])
	assert.Equal(t, int64(120000), effects[rent.ID])
}

func TestBalances(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	cash := f.account(t, alice, "Cash", ledger.Asset, "EUR")
	salary := f.account(t, alice, "Salary", ledger.Income, "EUR")
	idle := f.account(t, alice, "Idle", ledger.Asset, "EUR")
	bobs := f.account(t, bob, "Bob Cash", ledger.Asset, "EUR")
	f.post(t, alice, "2026-01-05", debit(cash, 1000), credit(salary, 1000))

	asOf := date.MustParse("2026-01-31")
	results, err := f.ledger.Balances(f.ctx, alice, []string{salary.ID, idle.ID, cash.ID, salary.ID}, asOf, "")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, salary.ID, results[0].AccountID)
	assert.Equal(t, int64(1000), results[0].BalanceMinor)
	assert.Equal(t, idle.ID, results[1].AccountID)
	assert.Equal(t, int64(0), results[1].BalanceMinor)
	assert.Equal(t, cash.ID, results[2].AccountID)
	assert.Equal(t, int64(1000), results[2].BalanceMinor)

	_, err = f.ledger.Balances(f.ctx, alice, []string{cash.ID, "nope"}, asOf, "")
	requireKind(t, err, ledger.NotFound)
	assert.Contains(t, err.Error(), "nope")

	_, err = f.ledger.Balances(f.ctx, alice, []string{cash.ID, bobs.ID}, asOf, "")
	requireKind(t, err, ledger.Forbidden)

	_, err = f.ledger.Balance(f.ctx, alice, "nope", asOf, "")
	requireKind(t, err, ledger.NotFound)
}

func TestBalanceSummary(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	rent := f.account(t, alice, "Rent", ledger.Expense, "EUR")
	card := f.account(t, alice, "Card", ledger.Liability, "EUR")
	cash := f.account(t, alice, "Cash", ledger.Asset, "EUR")
	bank := f.account(t, alice, "Bank", ledger.Asset, "EUR")
	f.post(t, alice, "2026-01-06", debit(rent, 900), credit(card, 900))
	f.post(t, alice, "2026-02-06", debit(cash, 50), credit(bank, 50))

	summary, err := f.ledger.BalanceSummary(f.ctx, alice, date.MustParse("2026-01-31"))
	require.NoError(t, err)
	require.Len(t, summary, 4)
	assert.Equal(t, []string{bank.ID, cash.ID, card.ID, rent.ID},
		[]string{summary[0].AccountID, summary[1].AccountID, summary[2].AccountID, summary[3].AccountID})
	assert.Equal(t, int64(0), summary[0].BalanceMinor)
	assert.Equal(t, int64(900), summary[2].BalanceMinor)
	assert.Equal(t, int64(900), summary[3].BalanceMinor)
}

func TestBalanceTimeseries(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	card := f.account(t, alice, "Card", ledger.Liability, "EUR")
	groceries := f.account(t, alice, "Groceries", ledger.Expense, "EUR")
	f.post(t, alice, "2026-01-30", debit(groceries, 1000), credit(card, 1000))
	f.post(t, alice, "2026-02-02", debit(groceries, 250), credit(card, 250))
	f.post(t, alice, "2026-02-02", debit(groceries, 50), credit(card, 50))
	f.post(t, alice, "2026-02-04", debit(card, 700), credit(groceries, 700))
	f.post(t, alice, "2026-02-09", debit(groceries, 5), credit(card, 5))

	from, to := date.MustParse("2026-02-01"), date.MustParse("2026-02-05")
	series, err := f.ledger.BalanceTimeseries(f.ctx, alice, card.ID, from, to, "")
	require.NoError(t, err)
	assert.Equal(t, "Card", series.AccountName)
	assert.Equal(t, ledger.Liability, series.AccountType)

	want := []int64{1000, 1300, 1300, 600, 600}
	require.Len(t, series.Points, from.DaysUntil(to)+1)
	for i, p := range series.Points {
		assert.Equal(t, from.Add(i), p.Date)
		assert.Equal(t, want[i], p.BalanceMinor, "day %s", p.Date)
	}

	single, err := f.ledger.BalanceTimeseries(f.ctx, alice, card.ID, to, to, "")
	require.NoError(t, err)
	require.Len(t, single.Points, 1)
	assert.Equal(t, int64(600), single.Points[0].BalanceMinor)

	_, err = f.ledger.BalanceTimeseries(f.ctx, alice, card.ID, to, from, "")
	requireKind(t, err, ledger.InvalidRequest)
}

func TestBalanceTimeseriesContiguity(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	cash := f.account(t, alice, "Cash", ledger.Asset, "EUR")
	salary := f.account(t, alice, "Salary", ledger.Income, "EUR")
	for i, day := range []string{"2026-01-01", "2026-01-15", "2026-02-28", "2026-03-01", "2026-03-31"} {
		f.post(t, alice, day, debit(cash, int64(100*(i+1))), credit(salary, int64(100*(i+1))))
	}

	ranges := [][2]string{
		{"2025-12-25", "2026-01-02"},
		{"2026-02-27", "2026-03-02"},
		{"2026-01-01", "2026-12-31"},
	}
	for _, r := range ranges {
		from, to := date.MustParse(r[0]), date.MustParse(r[1])
		series, err := f.ledger.BalanceTimeseries(f.ctx, alice, cash.ID, from, to, "")
		require.NoError(t, err)
		require.Len(t, series.Points, from.DaysUntil(to)+1)

		previous := balanceOf(t, f, alice, cash, from.Add(-1).String())
		for i, p := range series.Points {
			if i > 0 {
				assert.True(t, series.Points[i-1].Date.Before(p.Date))
			}
			closing := balanceOf(t, f, alice, cash, p.Date.String())
			assert.Equal(t, closing, p.BalanceMinor, "day %s", p.Date)
			assert.GreaterOrEqual(t, p.BalanceMinor, previous)
			previous = p.BalanceMinor
		}
	}
}

func TestMonthlyExpenses(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	cash := f.account(t, alice, "Cash", ledger.Asset, "EUR")
	groceries := f.account(t, alice, "Groceries", ledger.Expense, "EUR")
	dining := f.account(t, alice, "Dining", ledger.Expense, "EUR")
	food, err := f.ledger.CreateCategory(f.ctx, alice, "Food", "")
	require.NoError(t, err)
	drinks, err := f.ledger.CreateCategory(f.ctx, alice, "Drinks", "")
	require.NoError(t, err)

	f.post(t, alice, "2026-02-03", tagged(debit(groceries, 15000), food.ID), credit(cash, 15000))
	f.post(t, alice, "2026-02-17", tagged(debit(groceries, 8000), food.ID), credit(cash, 8000))
	f.post(t, alice, "2026-02-18", debit(groceries, 300), credit(cash, 300))
	f.post(t, alice, "2026-02-20", tagged(debit(groceries, 100), drinks.ID), credit(cash, 100))
	f.post(t, alice, "2026-02-21", tagged(debit(dining, 4000), food.ID), credit(cash, 4000))
	f.post(t, alice, "2026-02-25", debit(cash, 1000), tagged(credit(dining, 1000), food.ID))
	f.post(t, alice, "2026-01-31", tagged(debit(groceries, 999), food.ID), credit(cash, 999))
	f.post(t, alice, "2026-03-01", tagged(debit(groceries, 999), food.ID), credit(cash, 999))

	rows, err := f.ledger.MonthlyExpenses(f.ctx, alice, date.NewMonth(2026, time.February), ledger.Individual, "")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Dining", rows[0].ExpenseAccountName)
	assert.Equal(t, "Food", rows[0].CategoryTagName)
	assert.Equal(t, int64(3000), rows[0].NetMinor)

	assert.Equal(t, "Groceries", rows[1].ExpenseAccountName)
	assert.Equal(t, "Drinks", rows[1].CategoryTagName)
	assert.Equal(t, int64(100), rows[1].NetMinor)

	assert.Equal(t, "Groceries", rows[2].ExpenseAccountName)
	assert.Equal(t, food.ID, rows[2].CategoryTagID)
	assert.Equal(t, int64(23000), rows[2].NetMinor)
	assert.Equal(t, "EUR", rows[2].Currency)

	assert.Equal(t, "Groceries", rows[3].ExpenseAccountName)
	assert.Empty(t, rows[3].CategoryTagID)
	assert.Equal(t, int64(300), rows[3].NetMinor)

	_, err = f.ledger.MonthlyExpenses(f.ctx, alice, date.NewMonth(2026, time.February), "WEEKLY", "")
	requireKind(t, err, ledger.InvalidRequest)
	_, err = f.ledger.MonthlyExpenses(f.ctx, alice, date.NewMonth(2026, time.February), ledger.Household, "")
	requireKind(t, err, ledger.InvalidRequest)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	cash := f.account(t, alice, "Cash", ledger.Asset, "EUR")
	groceries := f.account(t, alice, "Groceries", ledger.Expense, "EUR")

	food, err := f.ledger.CreateCategory(f.ctx, alice, " Food ", "  ")
	require.NoError(t, err)
	assert.Equal(t, "Food", food.Name)
	assert.Empty(t, food.Color)

	_, err = f.ledger.CreateCategory(f.ctx, alice, "FOOD", "")
	requireKind(t, err, ledger.Conflict)

	_, err = f.ledger.CreateCategory(f.ctx, bob, "Food", "")
	require.NoError(t, err, "names are unique per owner")

	travel, err := f.ledger.CreateCategory(f.ctx, alice, "Travel", "#00ff00")
	require.NoError(t, err)

	updated, err := f.ledger.UpdateCategory(f.ctx, alice, food.ID, "food", "#123456")
	require.NoError(t, err, "changing only the case is allowed")
	assert.Equal(t, "food", updated.Name)
	assert.Equal(t, "#123456", updated.Color)

	_, err = f.ledger.UpdateCategory(f.ctx, alice, travel.ID, "Food", "")
	requireKind(t, err, ledger.Conflict)
	_, err = f.ledger.UpdateCategory(f.ctx, bob, travel.ID, "Mine", "")
	requireKind(t, err, ledger.Forbidden)

	list, err := f.ledger.ListCategories(f.ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "food", list[0].Name)
	assert.Equal(t, "Travel", list[1].Name)

	f.post(t, alice, "2026-02-01", tagged(debit(groceries, 100), food.ID), credit(cash, 100))
	err = f.ledger.DeleteCategory(f.ctx, alice, food.ID)
	requireKind(t, err, ledger.Conflict)

	require.NoError(t, f.ledger.DeleteCategory(f.ctx, alice, travel.ID))
	err = f.ledger.DeleteCategory(f.ctx, alice, travel.ID)
	requireKind(t, err, ledger.NotFound)
}

func TestListTransactionsPagingAndFilters(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	cash := f.account(t, alice, "Cash", ledger.Asset, "EUR")
	groceries := f.account(t, alice, "Groceries", ledger.Expense, "EUR")
	rent := f.account(t, alice, "Rent", ledger.Expense, "EUR")
	food, err := f.ledger.CreateCategory(f.ctx, alice, "Food", "")
	require.NoError(t, err)
	bobCash := f.account(t, bob, "Cash", ledger.Asset, "EUR")
	bobFun := f.account(t, bob, "Fun", ledger.Expense, "EUR")
	f.post(t, bob, "2026-01-10", debit(bobFun, 1), credit(bobCash, 1))

	for day := 1; day <= 7; day++ {
		d := date.New(2026, time.January, day).String()
		if day%2 == 0 {
			f.post(t, alice, d, debit(rent, 10), credit(cash, 10))
		} else {
			f.post(t, alice, d, tagged(debit(groceries, 10), food.ID), credit(cash, 10))
		}
	}

	first, err := f.ledger.ListTransactions(f.ctx, alice, ledger.TransactionQuery{Size: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, first.Total)
	assert.Equal(t, 3, first.TotalPages)
	require.Len(t, first.Items, 3)
	assert.Equal(t, date.MustParse("2026-01-07"), first.Items[0].TxnDate)
	assert.Equal(t, date.MustParse("2026-01-05"), first.Items[2].TxnDate)

	last, err := f.ledger.ListTransactions(f.ctx, alice, ledger.TransactionQuery{Size: 3, Page: 2})
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, date.MustParse("2026-01-01"), last.Items[0].TxnDate)

	ranged, err := f.ledger.ListTransactions(f.ctx, alice, ledger.TransactionQuery{
		From: date.MustParse("2026-01-02"), To: date.MustParse("2026-01-04"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ranged.Total)
	assert.Equal(t, ledger.DefaultPageSize, ranged.Size)

	byAccount, err := f.ledger.ListTransactions(f.ctx, alice, ledger.TransactionQuery{AccountID: rent.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, byAccount.Total)

	byCategory, err := f.ledger.ListTransactions(f.ctx, alice, ledger.TransactionQuery{CategoryID: food.ID})
	require.NoError(t, err)
	assert.Equal(t, 4, byCategory.Total)
	assert.Equal(t, "Food", byCategory.Items[0].Splits[0].CategoryTagName)

	capped, err := f.ledger.ListTransactions(f.ctx, alice, ledger.TransactionQuery{Size: 1000})
	require.NoError(t, err)
	assert.Equal(t, ledger.MaxPageSize, capped.Size)

	_, err = f.ledger.ListTransactions(f.ctx, alice, ledger.TransactionQuery{Page: -1})
	requireKind(t, err, ledger.InvalidRequest)

	_, err = f.ledger.ListTransactions(f.ctx, alice, ledger.TransactionQuery{Mode: "SHARED"})
	requireKind(t, err, ledger.InvalidRequest)
	assert.Contains(t, err.Error(), "Invalid mode: SHARED")

	lower, err := f.ledger.ListTransactions(f.ctx, alice, ledger.TransactionQuery{Mode: "individual"})
	require.NoError(t, err)
	assert.Equal(t, 7, lower.Total)
}

func TestUsersAndCurrencies(t *testing.T) {
	f := newFixture(t)
	id := f.user(t, "Alice@Example.com")

	_, err := f.ledger.RegisterUser(f.ctx, "alice@example.com")
	requireKind(t, err, ledger.Conflict)
	_, err = f.ledger.RegisterUser(f.ctx, "not-an-email")
	requireKind(t, err, ledger.InvalidRequest)

	u, err := f.ledger.UserByEmail(f.ctx, " ALICE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	_, err = f.ledger.UserByEmail(f.ctx, "nobody@example.com")
	requireKind(t, err, ledger.NotFound)

	currencies, err := f.ledger.Currencies(f.ctx)
	require.NoError(t, err)
	require.Len(t, currencies, 3)
	assert.Equal(t, "EUR", currencies[0].Code)

	jpy, err := f.ledger.Currency(f.ctx, "jpy")
	require.NoError(t, err)
	assert.Equal(t, 0, jpy.MinorUnit)
}

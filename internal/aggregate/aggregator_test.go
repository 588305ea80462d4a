package aggregate

import (
	"math/rand"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/ledger"
)

var march = ledger.PeriodOf(ledger.Date(2024, 3, 1), ledger.Month)

func target(v int64) *int64 { return &v }

func category(name string, kind ledger.Kind, budget *int64) ledger.Category {
	return ledger.Category{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       uuid.Must(uuid.NewV4()),
		Name:         name,
		Kind:         kind,
		BudgetTarget: budget,
	}
}

func tx(categoryID uuid.UUID, amount int64, on time.Time) ledger.Transaction {
	t := ledger.Transaction{
		ID:         uuid.Must(uuid.NewV4()),
		Amount:     amount,
		OccurredOn: on,
	}
	if categoryID != uuid.Nil {
		t.CategoryID = uuid.NullUUID{UUID: categoryID, Valid: true}
	}
	return t
}

func registry(t *testing.T, categories ...ledger.Category) *ledger.Registry {
	t.Helper()
	reg, err := ledger.NewRegistry(categories)
	require.NoError(t, err)
	return reg
}

// -- Compute tests --

func TestCompute_GroceriesVariance(t *testing.T) {
	groceries := category("Groceries", ledger.KindExpense, target(50000))
	reg := registry(t, groceries)
	txs := []ledger.Transaction{
		tx(groceries.ID, -12000, ledger.Date(2024, 3, 4)),
		tx(groceries.ID, -8000, ledger.Date(2024, 3, 18)),
	}

	got := Compute(txs, reg, march, Options{})

	agg := got[groceries.ID]
	assert.Equal(t, int64(-20000), agg.Actual)
	assert.Equal(t, int64(50000), agg.Target)
	assert.True(t, agg.HasTarget)
	assert.Equal(t, int64(70000), agg.Variance)
	assert.Equal(t, 2, agg.Count)
}

func TestCompute_VarianceConventions(t *testing.T) {
	groceries := category("Groceries", ledger.KindExpense, target(50000))
	reg := registry(t, groceries)
	txs := []ledger.Transaction{tx(groceries.ID, -20000, ledger.Date(2024, 3, 4))}

	tests := map[VarianceConvention]int64{
		TargetMinusActual: 70000,
		ActualMinusTarget: -70000,
		TargetMinusSpent:  30000,
	}
	for convention, want := range tests {
		got := Compute(txs, reg, march, Options{Variance: convention})
		assert.Equal(t, want, got[groceries.ID].Variance, convention.String())
	}
}

func TestCompute_CategoryWithoutTransactions(t *testing.T) {
	rent := category("Rent", ledger.KindExpense, target(120000))
	salary := category("Salary", ledger.KindIncome, nil)
	reg := registry(t, rent, salary)

	got := Compute(nil, reg, march, Options{})

	require.Len(t, got, 2)
	assert.Equal(t, Aggregate{CategoryID: rent.ID, Target: 120000, HasTarget: true, Variance: 120000}, got[rent.ID])
	assert.Equal(t, Aggregate{CategoryID: salary.ID}, got[salary.ID])
	_, ok := got[ledger.Uncategorized]
	assert.False(t, ok)
}

func TestCompute_UncategorizedBucket(t *testing.T) {
	groceries := category("Groceries", ledger.KindExpense, target(50000))
	reg := registry(t, groceries)
	txs := []ledger.Transaction{
		tx(groceries.ID, -1000, ledger.Date(2024, 3, 2)),
		tx(uuid.Nil, -2500, ledger.Date(2024, 3, 3)),
		tx(uuid.Nil, -500, ledger.Date(2024, 3, 9)),
	}

	got := Compute(txs, reg, march, Options{})

	assert.Equal(t, int64(-1000), got[groceries.ID].Actual)
	assert.Equal(t, int64(-3000), got[ledger.Uncategorized].Actual)
	assert.False(t, got[ledger.Uncategorized].HasTarget)

	omitted := Compute(txs, reg, march, Options{OmitUncategorized: true})

	_, ok := omitted[ledger.Uncategorized]
	assert.False(t, ok)
	assert.Equal(t, int64(-1000), omitted[groceries.ID].Actual)
}

func TestCompute_UnknownCategoryKeepsOwnBucket(t *testing.T) {
	groceries := category("Groceries", ledger.KindExpense, target(50000))
	reg := registry(t, groceries)
	orphan := uuid.Must(uuid.NewV4())

	got := Compute([]ledger.Transaction{tx(orphan, -700, ledger.Date(2024, 3, 5))}, reg, march, Options{})

	require.Contains(t, got, orphan)
	assert.Equal(t, int64(-700), got[orphan].Actual)
	assert.False(t, got[orphan].HasTarget)
	assert.Equal(t, int64(0), got[groceries.ID].Actual)
}

func TestCompute_IgnoresTransactionsOutsidePeriod(t *testing.T) {
	groceries := category("Groceries", ledger.KindExpense, nil)
	reg := registry(t, groceries)
	txs := []ledger.Transaction{
		tx(groceries.ID, -100, ledger.Date(2024, 2, 29)),
		tx(groceries.ID, -200, ledger.Date(2024, 3, 31)),
		tx(groceries.ID, -400, ledger.Date(2024, 4, 1)),
	}

	got := Compute(txs, reg, march, Options{})

	assert.Equal(t, int64(-200), got[groceries.ID].Actual)
	assert.Equal(t, 1, got[groceries.ID].Count)
}

// Property: shuffling the input never changes the result.
func TestCompute_OrderInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cats := []ledger.Category{
		category("Groceries", ledger.KindExpense, target(50000)),
		category("Fuel", ledger.KindExpense, nil),
		category("Salary", ledger.KindIncome, target(300000)),
	}
	reg := registry(t, cats...)

	for i := 0; i < 100; i++ {
		var txs []ledger.Transaction
		n := rng.Intn(40)
		for j := 0; j < n; j++ {
			var id uuid.UUID
			if k := rng.Intn(len(cats) + 1); k < len(cats) {
				id = cats[k].ID
			}
			on := ledger.Date(2024, 2, 20).AddDate(0, 0, rng.Intn(50))
			txs = append(txs, tx(id, int64(rng.Intn(20000)-10000), on))
		}
		want := Compute(txs, reg, march, Options{})

		shuffled := append([]ledger.Transaction(nil), txs...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		assert.Equal(t, want, Compute(shuffled, reg, march, Options{}))
	}
}

// -- Sum / Sorted tests --

func TestSum(t *testing.T) {
	groceries := category("Groceries", ledger.KindExpense, target(50000))
	salary := category("Salary", ledger.KindIncome, nil)
	reg := registry(t, groceries, salary)
	txs := []ledger.Transaction{
		tx(groceries.ID, -20000, ledger.Date(2024, 3, 4)),
		tx(salary.ID, 300000, ledger.Date(2024, 3, 25)),
	}

	totals := Sum(Compute(txs, reg, march, Options{}))

	assert.Equal(t, Totals{Income: 300000, Expense: -20000, Net: 280000, Target: 50000}, totals)
}

func TestSorted_UncategorizedLast(t *testing.T) {
	salary := category("Salary", ledger.KindIncome, nil)
	groceries := category("Groceries", ledger.KindExpense, nil)
	reg := registry(t, salary, groceries)
	orphan := uuid.Must(uuid.NewV4())
	txs := []ledger.Transaction{
		tx(uuid.Nil, -1, ledger.Date(2024, 3, 1)),
		tx(orphan, -1, ledger.Date(2024, 3, 1)),
	}

	sorted := Sorted(Compute(txs, reg, march, Options{}), reg)

	require.Len(t, sorted, 4)
	assert.Equal(t, groceries.ID, sorted[0].CategoryID)
	assert.Equal(t, salary.ID, sorted[1].CategoryID)
	assert.Equal(t, orphan, sorted[2].CategoryID)
	assert.Equal(t, ledger.Uncategorized, sorted[3].CategoryID)
}

func TestParseVarianceConvention(t *testing.T) {
	v, err := ParseVarianceConvention("Target-Minus-Spent")
	require.NoError(t, err)
	assert.Equal(t, TargetMinusSpent, v)

	v, err = ParseVarianceConvention("")
	require.NoError(t, err)
	assert.Equal(t, TargetMinusActual, v)

	_, err = ParseVarianceConvention("sideways")
	assert.Error(t, err)
}

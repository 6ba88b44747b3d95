package processors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/username/dompetku/backend/src/model"
)

func tx(amount int64, txType model.TransactionType, category, date string) model.Transaction {
	return model.Transaction{
		Amount:   decimal.NewFromInt(amount),
		Type:     txType,
		Category: category,
		Date:     date,
	}
}

func TestSumEmptyCollection(t *testing.T) {
	agg := NewTransactionAggregator()
	got := agg.Sum(nil, model.TransactionFilter{})
	if !got.IsZero() {
		t.Fatalf("expected zero for empty collection, got %s", got)
	}
}

func TestSumFilters(t *testing.T) {
	agg := NewTransactionAggregator()
	transactions := []model.Transaction{
		tx(150000, model.TransactionExpense, "Makanan & Minuman", "2024-03-15"),
		tx(50000, model.TransactionExpense, "Transportasi", "2024-03-10"),
		tx(2000000, model.TransactionIncome, "Gaji", "2024-03-01"),
		tx(75000, model.TransactionExpense, "Makanan & Minuman", "2024-02-28"),
	}

	cases := []struct {
		name   string
		filter model.TransactionFilter
		want   int64
	}{
		{"no filter sums everything", model.TransactionFilter{}, 2275000},
		{"by type", model.TransactionFilter{Type: model.TransactionIncome}, 2000000},
		{"by category", model.TransactionFilter{Category: "Transportasi"}, 50000},
		{
			"type, category and open-ended window",
			model.TransactionFilter{
				Type:     model.TransactionExpense,
				Category: "Makanan & Minuman",
				DateFrom: "2024-03-01",
			},
			150000,
		},
		{
			"inclusive dateFrom boundary",
			model.TransactionFilter{DateFrom: "2024-03-01", DateTo: "2024-03-01"},
			2000000,
		},
		{
			"unmatched filter returns zero",
			model.TransactionFilter{Category: "Hiburan"},
			0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := agg.Sum(transactions, tc.filter)
			if !got.Equal(decimal.NewFromInt(tc.want)) {
				t.Fatalf("got %s, want %d", got, tc.want)
			}
		})
	}
}

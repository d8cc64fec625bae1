package core

import (
	"testing"
)

func TestGroupByDateScenario(t *testing.T) {
	txs := []Transaction{
		tx(1, 30000, "2024-01-02"),
		tx(2, -5000, "2024-01-02"),
		tx(3, -2000, "2024-01-01"),
	}

	groups := GroupByDate(txs, FilterAll)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Date.Key() != "2024-01-02" || groups[1].Date.Key() != "2024-01-01" {
		t.Fatalf("groups out of order: %s, %s", groups[0].Date.Key(), groups[1].Date.Key())
	}
	if got := groups[0].Total.String(); got != "250.00" {
		t.Fatalf("day total = %s", got)
	}
	if len(groups[0].Transactions) != 2 {
		t.Fatalf("expected 2 entries on 2024-01-02, got %d", len(groups[0].Transactions))
	}
	if got := groups[1].Total.String(); got != "-20.00" {
		t.Fatalf("day total = %s", got)
	}
}

func TestGroupByDateFilters(t *testing.T) {
	txs := []Transaction{
		tx(1, 30000, "2024-01-02"),
		tx(2, -5000, "2024-01-02"),
		tx(3, 0, "2024-01-02"),
	}

	income := GroupByDate(txs, FilterIncome)
	if len(income) != 1 || len(income[0].Transactions) != 1 || income[0].Transactions[0].ID != 1 {
		t.Fatalf("income filter: %+v", income)
	}

	expense := GroupByDate(txs, FilterExpense)
	if len(expense) != 1 || len(expense[0].Transactions) != 1 || expense[0].Transactions[0].ID != 2 {
		t.Fatalf("expense filter: %+v", expense)
	}
}

func TestGroupByDateEmpty(t *testing.T) {
	if groups := GroupByDate(nil, FilterAll); len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}

func TestGroupByDateMissingDatesSortLast(t *testing.T) {
	undated := Transaction{ID: 9, Text: "old import", Amount: Money{Cents: 100}}
	txs := []Transaction{
		undated,
		tx(1, 200, "2024-05-01"),
	}
	groups := GroupByDate(txs, FilterAll)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Date.Key() != "2024-05-01" {
		t.Fatalf("dated group should come first, got %s", groups[0].Date.Key())
	}
	if groups[1].Transactions[0].ID != 9 {
		t.Fatalf("undated entry should sort last")
	}
}

func TestGroupByDateIdempotent(t *testing.T) {
	txs := []Transaction{
		tx(1, 100, "2024-01-03"),
		tx(2, -200, "2024-01-01"),
		tx(3, 300, "2024-01-03"),
		tx(4, 50, "2024-01-02"),
	}

	first := GroupByDate(txs, FilterAll)

	var flattened []Transaction
	for _, g := range first {
		flattened = append(flattened, g.Transactions...)
	}
	second := GroupByDate(flattened, FilterAll)

	if len(first) != len(second) {
		t.Fatalf("group count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Date.Key() != second[i].Date.Key() || first[i].Total != second[i].Total {
			t.Fatalf("group %d changed: %+v vs %+v", i, first[i], second[i])
		}
		if len(first[i].Transactions) != len(second[i].Transactions) {
			t.Fatalf("group %d size changed", i)
		}
		for j := range first[i].Transactions {
			if first[i].Transactions[j].ID != second[i].Transactions[j].ID {
				t.Fatalf("group %d order changed", i)
			}
		}
	}
}

func TestParseFilter(t *testing.T) {
	if ParseFilter("income") != FilterIncome {
		t.Fatalf("income")
	}
	if ParseFilter("expense") != FilterExpense {
		t.Fatalf("expense")
	}
	if ParseFilter("") != FilterAll || ParseFilter("bogus") != FilterAll {
		t.Fatalf("fallback")
	}
}

package core

import (
	"math"
	"testing"
)

func tx(id int64, cents int64, date string) Transaction {
	d, _ := ParseDate(date)
	return Transaction{ID: id, Text: "t", Amount: Money{Cents: cents}, Date: d}
}

func TestSummarizeScenario(t *testing.T) {
	txs := []Transaction{
		tx(1, 30000, "2024-01-02"),
		tx(2, -5000, "2024-01-02"),
		tx(3, -2000, "2024-01-01"),
	}
	s := Summarize(txs, DefaultPercentages)

	if got := s.Balance.String(); got != "230.00" {
		t.Fatalf("balance = %s", got)
	}
	if got := s.Income.String(); got != "300.00" {
		t.Fatalf("income = %s", got)
	}
	if got := s.Expense.String(); got != "70.00" {
		t.Fatalf("expense = %s", got)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, DefaultPercentages)
	if s.Balance.Cents != 0 || s.Income.Cents != 0 || s.Expense.Cents != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
	for i, sp := range s.Splits {
		if sp != 0 {
			t.Fatalf("split %d = %v", i, sp)
		}
	}
}

func TestSummarizeZeroAmountAffectsBalanceOnly(t *testing.T) {
	txs := []Transaction{
		tx(1, 10000, "2024-03-01"),
		tx(2, 0, "2024-03-01"),
	}
	s := Summarize(txs, DefaultPercentages)
	if s.Balance.Cents != 10000 || s.Income.Cents != 10000 || s.Expense.Cents != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestBalanceEqualsIncomeMinusExpense(t *testing.T) {
	sets := [][]Transaction{
		nil,
		{tx(1, 100, "2024-01-01")},
		{tx(1, 100, "2024-01-01"), tx(2, -37, "2024-01-02"), tx(3, 0, "2024-01-03")},
		{tx(1, -999, "2024-01-01"), tx(2, 12345, "2023-12-31"), tx(3, -1, "2024-02-02")},
	}
	for i, txs := range sets {
		s := Summarize(txs, DefaultPercentages)
		got := s.Balance.Float()
		want := s.Income.Float() - s.Expense.Float()
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("set %d: balance %v != income-expense %v", i, got, want)
		}
	}
}

func TestSplitsSumToIncomeTimesTotalPercentage(t *testing.T) {
	txs := []Transaction{
		tx(1, 30000, "2024-01-02"),
		tx(2, -5000, "2024-01-02"),
		tx(3, 7000, "2024-01-05"),
	}

	s := Summarize(txs, DefaultPercentages)
	sum := s.Splits[0] + s.Splits[1] + s.Splits[2]
	if math.Abs(sum-s.Income.Float()) > 1e-9 {
		t.Fatalf("default splits sum %v, income %v", sum, s.Income.Float())
	}

	pcts := [3]float64{0.25, 0.25, 0.25}
	s = Summarize(txs, pcts)
	sum = s.Splits[0] + s.Splits[1] + s.Splits[2]
	want := s.Income.Float() * (pcts[0] + pcts[1] + pcts[2])
	if math.Abs(sum-want) > 1e-9 {
		t.Fatalf("splits sum %v, want %v", sum, want)
	}
}

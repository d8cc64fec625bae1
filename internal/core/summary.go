package core

// Summary holds the derived aggregate values for a transaction set.
// Expense is reported as a non-negative magnitude. Splits are the three
// configured percentage shares of total income; they are kept as
// decimals and rounded to two places only when formatted.
type Summary struct {
	Balance Money
	Income  Money
	Expense Money
	Splits  [3]float64
}

// Summarize computes balance, income, expense and the percentage splits
// for the given transactions. Zero-amount entries affect the balance
// only. An empty input yields the zero Summary.
func Summarize(txs []Transaction, pcts [3]float64) Summary {
	var s Summary
	for _, t := range txs {
		s.Balance = s.Balance.Add(t.Amount)
		switch {
		case t.Amount.IsIncome():
			s.Income = s.Income.Add(t.Amount)
		case t.Amount.IsExpense():
			s.Expense = s.Expense.Add(t.Amount.Neg())
		}
	}
	income := s.Income.Float()
	for i, p := range pcts {
		s.Splits[i] = income * p
	}
	return s
}

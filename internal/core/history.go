package core

import (
	"sort"
	"time"
)

// Filter selects which transactions participate in history grouping.
type Filter int

const (
	FilterAll Filter = iota
	FilterIncome
	FilterExpense
)

// ParseFilter maps the query-string filter names to a Filter. Unknown
// values fall back to FilterAll.
func ParseFilter(s string) Filter {
	switch s {
	case "income":
		return FilterIncome
	case "expense":
		return FilterExpense
	default:
		return FilterAll
	}
}

func (f Filter) match(t Transaction) bool {
	switch f {
	case FilterIncome:
		return t.Amount.IsIncome()
	case FilterExpense:
		return t.Amount.IsExpense()
	default:
		return true
	}
}

// DayGroup is the set of transactions sharing a calendar date, with the
// day's subtotal.
type DayGroup struct {
	Date         Date
	Total        Money
	Transactions []Transaction
}

// GroupByDate buckets transactions by calendar date, most recent day
// first. Transactions without a date sort as if dated at the epoch (so
// they land last) but are keyed to today's date, matching the fallback
// the add path applies. Within a day, the post-sort order is preserved.
// The input slice is not modified.
func GroupByDate(txs []Transaction, filter Filter) []DayGroup {
	filtered := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if filter.match(t) {
			filtered = append(filtered, t)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return sortDate(filtered[i]).Time.After(sortDate(filtered[j]).Time)
	})

	var groups []DayGroup
	index := make(map[string]int)
	for _, t := range filtered {
		key := groupDate(t).Key()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Date: groupDate(t)})
		}
		groups[i].Total = groups[i].Total.Add(t.Amount)
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	return groups
}

func sortDate(t Transaction) Date {
	if t.Date.IsZero() {
		return DateOf(time.Unix(0, 0).UTC())
	}
	return t.Date
}

func groupDate(t Transaction) Date {
	if t.Date.IsZero() {
		return Today()
	}
	return t.Date
}

package core

import (
	"errors"
	"strings"
	"time"
)

// MaxDescriptionLen is the cap on a transaction description, in runes.
const MaxDescriptionLen = 80

type (
	// Date is a calendar date without a time component.
	Date struct {
		time.Time
	}

	// Transaction is a single dated, signed monetary entry. A positive
	// amount is income, a negative amount an expense. Zero is allowed and
	// contributes to the balance only.
	Transaction struct {
		ID     int64
		Text   string
		Amount Money
		Date   Date
	}

	// Settings is the persisted user configuration: a three-way
	// percentage split of total income plus the display-mode flag.
	Settings struct {
		P1   float64 `json:"p1"`
		P2   float64 `json:"p2"`
		P3   float64 `json:"p3"`
		Dark bool    `json:"dark"`
	}
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrFutureDate       = errors.New("future-dated transaction")
	ErrBadPercentages   = errors.New("percentages must be non-negative and sum to 100")
)

// DefaultPercentages is the split applied before any settings exist.
var DefaultPercentages = [3]float64{0.10, 0.50, 0.40}

// DefaultSettings returns the settings record created on first run.
func DefaultSettings() Settings {
	return Settings{
		P1: DefaultPercentages[0],
		P2: DefaultPercentages[1],
		P3: DefaultPercentages[2],
	}
}

// Percentages returns the configured split as an ordered triple.
func (s Settings) Percentages() [3]float64 {
	return [3]float64{s.P1, s.P2, s.P3}
}

// PercentagesFromInts converts whole-number percentages (0-100) to the
// stored decimal form. The three values must sum to exactly 100.
func PercentagesFromInts(p1, p2, p3 int) ([3]float64, error) {
	if p1 < 0 || p2 < 0 || p3 < 0 || p1+p2+p3 != 100 {
		return [3]float64{}, ErrBadPercentages
	}
	return [3]float64{float64(p1) / 100, float64(p2) / 100, float64(p3) / 100}, nil
}

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a calendar date in YYYY-MM-DD form. Legacy records may
// carry a full timestamp; the time-of-day portion is discarded.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len("2006-01-02") {
		s = s[:len("2006-01-02")]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Key returns the date in YYYY-MM-DD form, the grouping key for history.
func (d Date) Key() string {
	return d.Format("2006-01-02")
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// NormalizeDescription trims the text, collapses runs of whitespace to a
// single space and caps the result at MaxDescriptionLen runes.
func NormalizeDescription(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > MaxDescriptionLen {
		s = string(runes[:MaxDescriptionLen])
	}
	return s
}

// Validate checks a transaction against the input constraints. The date
// is compared against today: future-dated entries are rejected before
// they ever reach storage.
func (t Transaction) Validate(today Date) error {
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyDescription
	}
	if !t.Date.IsZero() && t.Date.After(today) {
		return ErrFutureDate
	}
	return nil
}

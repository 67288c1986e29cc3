package contracts

import (
	"fmt"
	"strings"
)

// TickerSet is the ordered, uppercase list of symbols for one run.
// Duplicates are allowed; each occurrence expects its own record.
type TickerSet []string

// NewTickerSet normalizes and validates symbols
func NewTickerSet(symbols []string) (TickerSet, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("ticker set is empty")
	}

	set := make(TickerSet, 0, len(symbols))
	for i, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if !validTicker(s) {
			return nil, fmt.Errorf("invalid ticker %q at position %d", symbols[i], i)
		}
		set = append(set, s)
	}
	return set, nil
}

// ParseTickerSet parses a comma separated list such as "DUOL, CMG"
func ParseTickerSet(raw string) (TickerSet, error) {
	var symbols []string
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) != "" {
			symbols = append(symbols, part)
		}
	}
	return NewTickerSet(symbols)
}

// Join returns the tickers joined with sep
func (t TickerSet) Join(sep string) string {
	return strings.Join(t, sep)
}

// Counts returns how many times each ticker occurs
func (t TickerSet) Counts() map[string]int {
	counts := make(map[string]int, len(t))
	for _, s := range t {
		counts[s]++
	}
	return counts
}

func validTicker(s string) bool {
	if s == "" || len(s) > 12 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
		default:
			return false
		}
	}
	return true
}

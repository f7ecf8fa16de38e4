package textproc

import "sort"

// Entry is a token with its occurrence count
type Entry struct {
	Token string
	Count int
}

// FrequencyTable maps tokens to occurrence counts and remembers first-seen order.
// It is never mutated after construction.
type FrequencyTable struct {
	counts map[string]int
	order  []string
}

// NewFrequencyTable counts the given tokens
func NewFrequencyTable(tokens []string) *FrequencyTable {
	ft := &FrequencyTable{counts: make(map[string]int, len(tokens))}
	for _, tok := range tokens {
		if _, seen := ft.counts[tok]; !seen {
			ft.order = append(ft.order, tok)
		}
		ft.counts[tok]++
	}
	return ft
}

// Count returns how often a token occurred (0 if never)
func (ft *FrequencyTable) Count(token string) int {
	return ft.counts[token]
}

// Contains reports whether the token occurred at least once
func (ft *FrequencyTable) Contains(token string) bool {
	_, ok := ft.counts[token]
	return ok
}

// Len returns the number of distinct tokens
func (ft *FrequencyTable) Len() int {
	return len(ft.order)
}

// MostCommon returns up to n entries ordered by descending count.
// Ties keep first-seen order. n <= 0 returns every entry.
func (ft *FrequencyTable) MostCommon(n int) []Entry {
	entries := make([]Entry, len(ft.order))
	for i, tok := range ft.order {
		entries[i] = Entry{Token: tok, Count: ft.counts[tok]}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

package domain

import (
	"strings"

	"github.com/samber/lo"
)

// UnknownSender is the display used when a sender carries no usable field
const UnknownSender = "Unknown"

// RawSender is the sender record as a feed reports it; any field may be empty
type RawSender struct {
	Username  string // public alias, with or without leading @
	FirstName string
	LastName  string
	FullName  string // used as-is when the source has no first/last split
	ID        string
}

// NormalizedSender is the canonical identity of a message author (value object)
type NormalizedSender struct {
	Handle   string // @alias or empty
	FullName string
	ID       string
	Display  string // first non-empty of Handle, FullName, ID, else UnknownSender
}

// NormalizeSender maps a raw sender (possibly nil) to its canonical identity
func NormalizeSender(raw *RawSender) NormalizedSender {
	if raw == nil {
		return NormalizedSender{Display: UnknownSender}
	}

	var ns NormalizedSender
	if alias := strings.TrimPrefix(strings.TrimSpace(raw.Username), "@"); alias != "" {
		ns.Handle = "@" + alias
	}

	ns.FullName = strings.TrimSpace(raw.FullName)
	if ns.FullName == "" {
		parts := lo.Compact([]string{strings.TrimSpace(raw.FirstName), strings.TrimSpace(raw.LastName)})
		ns.FullName = strings.Join(parts, " ")
	}
	ns.ID = strings.TrimSpace(raw.ID)

	ns.Display = lo.CoalesceOrEmpty(ns.Handle, ns.FullName, ns.ID)
	if ns.Display == "" {
		ns.Display = UnknownSender
	}
	return ns
}

// keys returns the lower-cased identifiers a filter entry may match
func (s NormalizedSender) keys() []string {
	keys := []string{
		strings.ToLower(s.Handle),
		strings.ToLower(strings.TrimPrefix(s.Handle, "@")),
		strings.ToLower(s.FullName),
		strings.ToLower(s.ID),
	}
	return lo.Uniq(lo.Compact(keys))
}

// SenderFilter is a set of lower-cased handles, names or ids; empty accepts everyone
type SenderFilter struct {
	entries map[string]struct{}
	ordered []string
}

// NewSenderFilter builds a filter from configured entries, dropping blanks
func NewSenderFilter(entries []string) SenderFilter {
	normalized := lo.Uniq(lo.Compact(lo.Map(entries, func(e string, _ int) string {
		return strings.ToLower(strings.TrimSpace(e))
	})))

	f := SenderFilter{entries: make(map[string]struct{}, len(normalized)), ordered: normalized}
	for _, e := range normalized {
		f.entries[e] = struct{}{}
	}
	return f
}

// IsEmpty reports whether the filter accepts all senders
func (f SenderFilter) IsEmpty() bool {
	return len(f.entries) == 0
}

// Allows reports whether a sender passes the filter
func (f SenderFilter) Allows(s NormalizedSender) bool {
	if f.IsEmpty() {
		return true
	}
	for _, k := range s.keys() {
		if _, ok := f.entries[k]; ok {
			return true
		}
	}
	return false
}

// Entries returns the normalized entries in configuration order
func (f SenderFilter) Entries() []string {
	return append([]string(nil), f.ordered...)
}

// Describe renders the filter for the report header
func (f SenderFilter) Describe() string {
	if f.IsEmpty() {
		return "all senders"
	}
	return "only " + strings.Join(f.ordered, ", ")
}

// Package filter models the optional metadata constraint applied to both index
// queries. Each field is an independent exact match; an unset field constrains
// nothing.
package filter

// Filter narrows a search to chunks whose metadata matches every set field.
type Filter struct {
	source   string
	category string
	client   string
}

// New creates a filter. Empty strings leave the corresponding field open.
func New(source, category, client string) Filter {
	return Filter{source: source, category: category, client: client}
}

// Source returns the source constraint ("" = unconstrained).
func (f Filter) Source() string { return f.source }

// Category returns the category constraint ("" = unconstrained).
func (f Filter) Category() string { return f.category }

// Client returns the client constraint ("" = unconstrained).
func (f Filter) Client() string { return f.client }

// IsEmpty reports whether no field is constrained.
func (f Filter) IsEmpty() bool {
	return f.source == "" && f.category == "" && f.client == ""
}

// Matches reports whether chunk metadata satisfies every set field.
func (f Filter) Matches(source, category, client string) bool {
	if f.source != "" && f.source != source {
		return false
	}
	if f.category != "" && f.category != category {
		return false
	}
	if f.client != "" && f.client != client {
		return false
	}
	return true
}

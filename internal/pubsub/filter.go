package pubsub

import "bytes"

// NameFilter matches topic names by exact match or prefix.
type NameFilter struct {
	filter []byte
}

// NewNameFilter constructs a NameFilter from a topic byte slice.
func NewNameFilter(filter []byte) NameFilter {
	return NameFilter{filter: append([]byte(nil), filter...)}
}

// NewNameFilterString constructs a NameFilter from a topic string.
func NewNameFilterString(filter string) NameFilter {
	return NewNameFilter([]byte(filter))
}

// Matches reports whether name is exactly equal to the filter.
func (f NameFilter) Matches(name []byte) bool {
	return bytes.Equal(name, f.filter)
}

// Prefixes reports whether name begins with the filter.
func (f NameFilter) Prefixes(name []byte) bool {
	return len(name) >= len(f.filter) && bytes.Equal(name[:len(f.filter)], f.filter)
}

// Suffix returns the remainder of name after the filter prefix. It does not
// check that the filter actually prefixes name; callers should check
// Prefixes first.
func (f NameFilter) Suffix(name []byte) []byte {
	if len(f.filter) >= len(name) {
		return nil
	}
	return name[len(f.filter):]
}

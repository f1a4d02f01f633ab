package utils

// KeyFilter drops repeated keys while merging result lists.
// It is not safe for concurrent use.
type KeyFilter struct {
	seen map[string]struct{}
}

// NewKeyFilter creates an empty filter.
func NewKeyFilter() *KeyFilter {
	return &KeyFilter{seen: make(map[string]struct{})}
}

// ShouldInclude reports whether key is new, and remembers it.
func (f *KeyFilter) ShouldInclude(key string) bool {
	if _, ok := f.seen[key]; ok {
		return false
	}
	f.seen[key] = struct{}{}
	return true
}

package models

// PathSet is the ordered list of paths a logical document has been known by:
// the current path first, then historical aliases in configured order.
type PathSet struct {
	Current string
	Aliases []string
}

// NewPathSet creates a PathSet for current and its aliases.
func NewPathSet(current string, aliases ...string) PathSet {
	copied := make([]string, len(aliases))
	copy(copied, aliases)
	return PathSet{Current: current, Aliases: copied}
}

// All returns [Current, Aliases...].
func (p PathSet) All() []string {
	paths := make([]string, 0, len(p.Aliases)+1)
	paths = append(paths, p.Current)
	return append(paths, p.Aliases...)
}

// Len returns the number of candidate paths.
func (p PathSet) Len() int {
	return len(p.Aliases) + 1
}

package history

import (
	"github.com/aleister1102/revtrail/internal/config"
	"github.com/aleister1102/revtrail/internal/models"
)

// AliasResolver maps a document's current path to the paths it was previously
// known by. The table is copied at construction and never mutated afterwards.
type AliasResolver struct {
	renames map[string][]string
}

// NewAliasResolver builds a resolver from the configured rename table.
// Duplicate aliases and aliases equal to their current path are dropped.
func NewAliasResolver(renames config.RenameConfig) *AliasResolver {
	table := make(map[string][]string, len(renames))
	for current, aliases := range renames {
		seen := map[string]struct{}{current: {}}
		kept := make([]string, 0, len(aliases))
		for _, alias := range aliases {
			if _, dup := seen[alias]; dup || alias == "" {
				continue
			}
			seen[alias] = struct{}{}
			kept = append(kept, alias)
		}
		table[current] = kept
	}
	return &AliasResolver{renames: table}
}

// AliasesOf returns the historical aliases of currentPath in configured order.
// Unknown paths have no aliases.
func (r *AliasResolver) AliasesOf(currentPath string) []string {
	aliases := r.renames[currentPath]
	out := make([]string, len(aliases))
	copy(out, aliases)
	return out
}

// PathSet returns [currentPath, aliases...].
func (r *AliasResolver) PathSet(currentPath string) models.PathSet {
	return models.NewPathSet(currentPath, r.renames[currentPath]...)
}

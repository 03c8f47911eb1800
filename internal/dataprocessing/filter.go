package dataprocessing

import (
	"slices"

	"pvflash/pkg/contracts/domain"
)

// ExcludeModules drops every row whose serial is in serials. Relative order is
// preserved and the row index is reassigned densely. An empty list returns an
// unchanged copy.
func ExcludeModules(table *domain.ParameterTable, serials []string) *domain.ParameterTable {
	if len(serials) == 0 {
		return table.Clone()
	}
	out := table.Filter(func(r domain.ParameterRow) bool {
		return !slices.Contains(serials, r.Serial)
	})
	out.Reindex()
	return out
}

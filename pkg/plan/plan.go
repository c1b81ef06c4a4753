// Package plan assembles the reviewable cleanup plan, renders it, and
// gates execution behind an optional confirmation. Everything here is
// read-only: no mutation happens until the executor receives the plan.
package plan

import (
	"sort"
	"time"

	"github.com/unixpariah/nh/pkg/types"
)

// Build merges the tagged profile and GC-root sets into a single
// immutable Plan. GC roots are sorted by destination so the report and
// the execution order are deterministic.
func Build(profiles types.ProfileSet, roots types.GcRootSet, keep uint32, keepSince time.Duration, patterns []string) *types.Plan {
	sorted := make(types.GcRootSet, len(roots))
	copy(sorted, roots)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Destination < sorted[j].Destination
	})

	return &types.Plan{
		Profiles:  profiles,
		Roots:     sorted,
		Keep:      keep,
		KeepSince: keepSince,
		Patterns:  patterns,
	}
}

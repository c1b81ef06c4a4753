// Package retention implements the dual keep-count / keep-since rule
// that decides which generations and GC roots survive a cleanup pass.
package retention

import (
	"time"

	"github.com/unixpariah/nh/pkg/logging"
	"github.com/unixpariah/nh/pkg/types"
)

// Policy holds the retention criteria for one clean run. Now is fixed
// once at plan time so every entry is judged against the same instant.
type Policy struct {
	// Keep is the minimum number of newest generations to retain,
	// regardless of age. Zero means the age rule alone applies.
	Keep uint32

	// KeepSince retains any entry younger than this duration.
	// Zero means the count rule alone applies.
	KeepSince time.Duration

	Now time.Time
}

// New returns a policy anchored at the current time.
func New(keep uint32, keepSince time.Duration) Policy {
	return Policy{Keep: keep, KeepSince: keepSince, Now: time.Now()}
}

// Apply mutates the tags of set in place. Two passes run in order, and
// each only ever moves a tag from remove toward retain:
//
//  1. Age pass: entries modified within KeepSince are retained.
//  2. Count pass: the newest Keep entries are retained regardless of
//     the age pass outcome.
//
// The set must already be sorted by generation number ascending.
func (p Policy) Apply(set types.GenerationSet) {
	for i := range set {
		if p.withinKeepWindow(set[i].LastModified, set[i].Path) {
			set[i].Remove = false
		}
	}

	kept := uint32(0)
	for i := len(set) - 1; i >= 0 && kept < p.Keep; i-- {
		set[i].Remove = false
		kept++
	}
}

// ApplyAge applies only the age rule to GC roots, which have no count
// dimension.
func (p Policy) ApplyAge(roots types.GcRootSet) {
	for i := range roots {
		if p.withinKeepWindow(roots[i].LastModified, roots[i].Destination) {
			roots[i].Remove = false
		}
	}
}

// withinKeepWindow reports whether an entry's age is inside KeepSince.
// A negative age means the entry's mtime is in the future (clock
// anomaly); such entries are retained, because unreliable time data
// must never widen the removal set.
func (p Policy) withinKeepWindow(lastModified time.Time, path string) bool {
	age := p.Now.Sub(lastModified)
	if age < 0 {
		lg := logging.GetLogger("retention")
		lg.Warn().
			Time("now", p.Now).
			Time("lastModified", lastModified).
			Str("path", path).
			Msg("Entry is newer than the current time, keeping it")
		return true
	}
	return age <= p.KeepSince
}

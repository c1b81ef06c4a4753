// Package types defines the core entities shared across the nh clean
// engine: generations, tagged retention sets, GC roots, scopes, and the
// computed cleanup plan.
package types

import (
	"sort"
	"time"
)

// ScopeKind selects which profiles a clean run covers.
type ScopeKind int

const (
	// ScopeAll cleans every profile on the system. Requires root.
	ScopeAll ScopeKind = iota
	// ScopeUser cleans the invoking user's profiles. Must not run as root.
	ScopeUser
	// ScopeProfile cleans a single explicitly named profile.
	ScopeProfile
)

// Scope is a closed variant: All, User, or Profile(path).
type Scope struct {
	Kind    ScopeKind
	Profile string
}

// AllScope returns the all-profiles scope.
func AllScope() Scope { return Scope{Kind: ScopeAll} }

// UserScope returns the current-user scope.
func UserScope() Scope { return Scope{Kind: ScopeUser} }

// ProfileScope returns a scope covering exactly one profile path.
func ProfileScope(path string) Scope {
	return Scope{Kind: ScopeProfile, Profile: path}
}

// Generation is one versioned profile symlink (<name>-<N>-link).
// LastModified comes from the link's own metadata, not the target:
// only the link's mtime reflects when the generation became current.
// The zero time is the "unknown" sentinel.
type Generation struct {
	Number       uint64
	LastModified time.Time
	Path         string
}

// TaggedGeneration pairs a generation with its retention tag.
// Remove=true means scheduled for removal; every discovered generation
// starts tagged for removal until a retention rule flips it.
type TaggedGeneration struct {
	Generation
	Remove bool
}

// GenerationSet is an ordered collection of tagged generations,
// sorted by generation number ascending. The ordering is load-bearing:
// the count-based retention rule walks it from the newest entry back.
type GenerationSet []TaggedGeneration

// Sort orders the set by generation number ascending.
func (s GenerationSet) Sort() {
	sort.Slice(s, func(i, j int) bool { return s[i].Number < s[j].Number })
}

// RemovalCount returns how many generations are tagged for removal.
func (s GenerationSet) RemovalCount() int {
	n := 0
	for _, g := range s {
		if g.Remove {
			n++
		}
	}
	return n
}

// ProfileSet maps a profile path to its tagged generations.
// A profile with zero generations holds an empty set, never an error.
type ProfileSet map[string]GenerationSet

// GcRoot is an auto GC root resolved one symlink hop to its
// destination, carrying the same retention tag as generations.
type GcRoot struct {
	Destination  string
	LastModified time.Time
	Remove       bool
}

// GcRootSet holds tagged GC roots in discovery order.
type GcRootSet []GcRoot

// RemovalCount returns how many roots are tagged for removal.
func (s GcRootSet) RemovalCount() int {
	n := 0
	for _, r := range s {
		if r.Remove {
			n++
		}
	}
	return n
}

// Plan is the fully computed, immutable set of retain/remove decisions
// produced before any mutation occurs. A fresh Plan is recomputed from
// scratch on every invocation; the filesystem is the only state carried
// between runs.
type Plan struct {
	Profiles  ProfileSet
	Roots     GcRootSet
	Keep      uint32
	KeepSince time.Duration
	Patterns  []string
}

// RemovalCount returns the total number of entities tagged for removal.
func (p *Plan) RemovalCount() int {
	n := p.Roots.RemovalCount()
	for _, set := range p.Profiles {
		n += set.RemovalCount()
	}
	return n
}

// IsEmpty reports whether the plan removes nothing.
func (p *Plan) IsEmpty() bool {
	return p.RemovalCount() == 0
}

// ProfilePaths returns the profile paths in sorted order, for
// deterministic presentation and execution.
func (p *Plan) ProfilePaths() []string {
	paths := make([]string, 0, len(p.Profiles))
	for path := range p.Profiles {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

package plan

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unixpariah/nh/pkg/types"
)

func samplePlan() *types.Plan {
	profiles := types.ProfileSet{
		"/nix/var/nix/profiles/system": {
			{Generation: types.Generation{Number: 1, Path: "/nix/var/nix/profiles/system-1-link"}, Remove: true},
			{Generation: types.Generation{Number: 2, Path: "/nix/var/nix/profiles/system-2-link"}, Remove: false},
			{Generation: types.Generation{Number: 3, Path: "/nix/var/nix/profiles/system-3-link"}, Remove: false},
		},
	}
	roots := types.GcRootSet{
		{Destination: "/home/alice/project/result", Remove: true},
		{Destination: "/home/alice/app/.direnv/flake-profile", Remove: false},
	}
	return Build(profiles, roots, 2, 48*time.Hour, []string{`.*/\.direnv/.*`, `.*result.*`})
}

func TestBuildSortsRoots(t *testing.T) {
	p := samplePlan()

	require.Len(t, p.Roots, 2)
	assert.Equal(t, "/home/alice/app/.direnv/flake-profile", p.Roots[0].Destination)
	assert.Equal(t, "/home/alice/project/result", p.Roots[1].Destination)
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	roots := types.GcRootSet{
		{Destination: "/b/result"},
		{Destination: "/a/result"},
	}
	Build(nil, roots, 1, 0, nil)

	assert.Equal(t, "/b/result", roots[0].Destination)
}

func TestRenderDeterministic(t *testing.T) {
	p := samplePlan()

	var first, second bytes.Buffer
	(&Renderer{Out: &first}).Render(p)
	(&Renderer{Out: &second}).Render(p)

	assert.Equal(t, first.String(), second.String())
}

func TestRenderReport(t *testing.T) {
	p := samplePlan()

	var buf bytes.Buffer
	(&Renderer{Out: &buf}).Render(p)
	out := buf.String()

	assert.Contains(t, out, "Welcome to nh clean")
	assert.Contains(t, out, "Keeping 2 generation(s)")
	assert.Contains(t, out, "Keeping paths newer than 48h0m0s")
	assert.Contains(t, out, `- RE  .*result.*`)
	assert.Contains(t, out, "- DEL /home/alice/project/result")
	assert.Contains(t, out, "- OK  /home/alice/app/.direnv/flake-profile")
	assert.Contains(t, out, "/nix/var/nix/profiles/system")
	assert.Contains(t, out, "- DEL /nix/var/nix/profiles/system-1-link")
	assert.Contains(t, out, "- OK  /nix/var/nix/profiles/system-3-link")

	// Generations are listed newest first.
	newest := strings.Index(out, "system-3-link")
	oldest := strings.Index(out, "system-1-link")
	require.Greater(t, newest, 0)
	assert.Less(t, newest, oldest)
}

func TestRenderSkipsEmptyRoots(t *testing.T) {
	p := Build(nil, nil, 1, 0, []string{`.*result.*`})

	var buf bytes.Buffer
	(&Renderer{Out: &buf}).Render(p)

	assert.NotContains(t, buf.String(), "gcroots")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"no\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got, err := Confirm(strings.NewReader(tt.input), &out)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "[y/N]")
	}
}

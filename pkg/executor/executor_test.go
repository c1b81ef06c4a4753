package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unixpariah/nh/pkg/filesystem"
	"github.com/unixpariah/nh/pkg/types"
)

type fakeCollector struct {
	gcCalls       int
	gcMax         string
	optimiseCalls int
	gcErr         error
}

func (c *fakeCollector) GC(max string) error {
	c.gcCalls++
	c.gcMax = max
	return c.gcErr
}

func (c *fakeCollector) Optimise() error {
	c.optimiseCalls++
	return nil
}

func planFor(gens []types.TaggedGeneration, roots types.GcRootSet) *types.Plan {
	profiles := types.ProfileSet{}
	if len(gens) > 0 {
		profiles["/profiles/system"] = gens
	}
	return &types.Plan{Profiles: profiles, Roots: roots, Keep: 1}
}

func TestExecuteRemovesTaggedPaths(t *testing.T) {
	dir := t.TempDir()
	gen1 := filepath.Join(dir, "system-1-link")
	gen2 := filepath.Join(dir, "system-2-link")
	root := filepath.Join(dir, "result")
	for _, p := range []string{gen1, gen2, root} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	collector := &fakeCollector{}
	exec := New(Options{Collector: collector})

	p := planFor(
		[]types.TaggedGeneration{
			{Generation: types.Generation{Number: 1, Path: gen1}, Remove: true},
			{Generation: types.Generation{Number: 2, Path: gen2}, Remove: false},
		},
		types.GcRootSet{{Destination: root, Remove: true}},
	)

	res, err := exec.Execute(p, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.RemovedGenerations)
	assert.Equal(t, 1, res.RemovedRoots)
	assert.Empty(t, res.Failed)

	assert.NoFileExists(t, gen1)
	assert.FileExists(t, gen2)
	assert.NoFileExists(t, root)
	assert.Equal(t, 1, collector.gcCalls)
}

func TestExecuteDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	gen := filepath.Join(dir, "system-1-link")
	require.NoError(t, os.WriteFile(gen, []byte("x"), 0o644))

	collector := &fakeCollector{}
	exec := New(Options{DryRun: true, Collector: collector})

	p := planFor([]types.TaggedGeneration{
		{Generation: types.Generation{Number: 1, Path: gen}, Remove: true},
	}, nil)

	res, err := exec.Execute(p, RunOptions{Optimise: true})
	require.NoError(t, err)

	assert.Zero(t, res.RemovedGenerations)
	assert.FileExists(t, gen)

	// The collector still gets its calls; a dry collector only
	// announces them.
	assert.Equal(t, 1, collector.gcCalls)
	assert.Equal(t, 1, collector.optimiseCalls)
}

func TestExecuteContinuesPastFailures(t *testing.T) {
	fs := filesystem.NewMem()
	require.NoError(t, fs.WriteFile("/profiles/system-2-link", []byte("x"), 0o644))

	collector := &fakeCollector{}
	exec := New(Options{FS: fs, Collector: collector})

	p := planFor([]types.TaggedGeneration{
		{Generation: types.Generation{Number: 1, Path: "/profiles/system-1-link"}, Remove: true},
		{Generation: types.Generation{Number: 2, Path: "/profiles/system-2-link"}, Remove: true},
	}, nil)

	res, err := exec.Execute(p, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.RemovedGenerations)
	assert.Equal(t, []string{"/profiles/system-1-link"}, res.Failed)
	assert.Equal(t, 1, collector.gcCalls)
}

func TestExecuteCollectorOptions(t *testing.T) {
	collector := &fakeCollector{}
	exec := New(Options{FS: filesystem.NewMem(), Collector: collector})

	_, err := exec.Execute(planFor(nil, nil), RunOptions{Max: "10G", Optimise: true})
	require.NoError(t, err)

	assert.Equal(t, 1, collector.gcCalls)
	assert.Equal(t, "10G", collector.gcMax)
	assert.Equal(t, 1, collector.optimiseCalls)
}

func TestExecuteNoGC(t *testing.T) {
	collector := &fakeCollector{}
	exec := New(Options{FS: filesystem.NewMem(), Collector: collector})

	_, err := exec.Execute(planFor(nil, nil), RunOptions{NoGC: true})
	require.NoError(t, err)

	assert.Zero(t, collector.gcCalls)
}

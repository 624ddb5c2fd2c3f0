package stream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/ductline/errors"
	"github.com/kbukum/ductline/operation"
	"github.com/kbukum/ductline/operation/filter"
	"github.com/kbukum/ductline/tuple"
)

// lifecycle records Prepare and Cleanup calls in a shared journal.
type lifecycle struct {
	operation.Base
	journal *[]string
}

func newLifecycle(name string, journal *[]string) *lifecycle {
	return &lifecycle{Base: operation.NewBase(name), journal: journal}
}

func (l *lifecycle) Prepare(*operation.Process, *operation.Call) error {
	*l.journal = append(*l.journal, "prepare "+l.Name())
	return nil
}

func (l *lifecycle) Cleanup(*operation.Process, *operation.Call) {
	*l.journal = append(*l.journal, "cleanup "+l.Name())
}

func (l *lifecycle) IsRemove(*operation.Process, *operation.Call) (bool, error) {
	return false, nil
}

func TestChain_LifecycleOrder(t *testing.T) {
	var journal []string
	buf := &RecordBuffer{}
	g := NewGraph("g", abc).
		Filter("first", tuple.All, newLifecycle("first", &journal)).
		Filter("second", tuple.All, newLifecycle("second", &journal)).
		Sink("out", buf.Sink)

	chain, err := g.Build(newRuntime(nil))
	require.NoError(t, err)
	require.NoError(t, chain.Initialize())
	require.NoError(t, chain.Initialize())
	require.NoError(t, chain.Run(context.Background(), FromSlice([]tuple.Tuple{{1, 2, 3}})))
	chain.Cleanup()
	chain.Cleanup()

	assert.Equal(t, []string{
		"prepare second",
		"prepare first",
		"cleanup first",
		"cleanup second",
	}, journal)
	assert.Equal(t, []tuple.Tuple{{1, 2, 3}}, buf.Records())
}

func TestGraph_BuildErrors(t *testing.T) {
	sink := (&RecordBuffer{}).Sink
	tests := []struct {
		name  string
		graph *Graph
	}{
		{"no schema", NewGraph("g", nil).Sink("out", sink)},
		{"no stages", NewGraph("g", abc)},
		{"no terminal", NewGraph("g", abc).Filter("f", tuple.All, newLifecycle("f", new([]string)))},
		{"sink in the middle", NewGraph("g", abc).Sink("out", sink).Filter("f", tuple.All, newLifecycle("f", new([]string)))},
		{"empty branch", NewGraph("g", abc).Split("fan", NewBranch().Sink("out", sink), NewBranch())},
		{"nil branch", NewGraph("g", abc).Split("fan", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.graph.Build(newRuntime(nil))
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidAssembly), "got %v", err)
		})
	}
}

func TestGraph_SelectorResolvedAtInitialize(t *testing.T) {
	g := NewGraph("g", abc).
		Filter("f", tuple.Named("missing"), newLifecycle("f", new([]string))).
		Sink("out", (&RecordBuffer{}).Sink)

	chain, err := g.Build(newRuntime(nil))
	require.NoError(t, err)
	err = chain.Initialize()
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidSelector), "got %v", err)
}

func TestChain_FailedInitializeIsSticky(t *testing.T) {
	reporter := &collectingReporter{}
	buf := &RecordBuffer{}
	g := NewGraph("g", abc).
		Filter("f", tuple.Named("missing"), filter.NewNull()).
		Sink("out", buf.Sink)

	chain, err := g.Build(newRuntime(reporter))
	require.NoError(t, err)

	first := chain.Initialize()
	require.True(t, errors.HasCode(first, errors.ErrCodeInvalidSelector), "got %v", first)
	assert.Same(t, first, chain.Initialize())

	err = chain.Run(context.Background(), FromSlice([]tuple.Tuple{{1, 2, 3}, {4, 5, 6}}))
	assert.Same(t, first, err)
	assert.Empty(t, reporter.failures)
	assert.Empty(t, buf.Records())
	chain.Cleanup()
}

func TestGraph_SplitAndEach(t *testing.T) {
	left, right := &RecordBuffer{}, &RecordBuffer{}
	g := NewGraph("g", abc).
		Split("fan",
			NewBranch().Sink("left", left.Sink),
			NewBranch().
				Each("words", tuple.Named("a", "b"), splitWords("words")).
				Sink("right", right.Sink),
		)

	chain, err := g.Build(newRuntime(nil))
	require.NoError(t, err)
	require.NoError(t, chain.Run(context.Background(), FromSlice([]tuple.Tuple{{"x", "y", 1}, {"z", nil, 2}})))
	chain.Cleanup()

	assert.Equal(t, []tuple.Tuple{{"x", "y", 1}, {"z", nil, 2}}, left.Records())
	assert.Equal(t, []tuple.Tuple{{"x"}, {"y"}, {"z"}, {""}}, right.Records())
}

func TestGraph_BuildsIndependentChains(t *testing.T) {
	var journal []string
	g := NewGraph("g", abc).
		Filter("f", tuple.All, newLifecycle("f", &journal)).
		Sink("out", (&RecordBuffer{}).Sink)

	a, err := g.Build(newRuntime(nil))
	require.NoError(t, err)
	b, err := g.Build(newRuntime(nil))
	require.NoError(t, err)
	assert.NotSame(t, a.Source(), b.Source())

	require.NoError(t, a.Initialize())
	require.NoError(t, b.Initialize())
	assert.Equal(t, []string{"prepare f", "prepare f"}, journal)
}

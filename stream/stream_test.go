package stream

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/ductline/errors"
	"github.com/kbukum/ductline/logger"
	"github.com/kbukum/ductline/operation"
	"github.com/kbukum/ductline/operation/filter"
	"github.com/kbukum/ductline/tuple"
)

type collectingReporter struct {
	failures []Failure
}

func (r *collectingReporter) Report(f Failure) error {
	r.failures = append(r.failures, f)
	return nil
}

func newRuntime(r Reporter) *Runtime {
	return NewRuntime("test", operation.NewProcess(logger.Nop()), r, nil)
}

// capture is a downstream duct recording the entries it receives.
type capture struct {
	entries []*tuple.Entry
	values  []tuple.Tuple
}

func (p *capture) Bind(Duct)         {}
func (p *capture) Initialize() error { return nil }
func (p *capture) Cleanup()          {}

func (p *capture) Receive(_ Duct, entry *tuple.Entry) {
	p.entries = append(p.entries, entry)
	p.values = append(p.values, append(tuple.Tuple(nil), entry.Tuple()...))
}

func entryOf(t *testing.T, schema *tuple.Schema, values ...any) *tuple.Entry {
	t.Helper()
	e, err := tuple.NewEntryWith(schema, values)
	require.NoError(t, err)
	return e
}

var abc = tuple.Names("a", "b", "c")

func removeWhen(name string, fn func(args *tuple.Entry) (bool, error)) *filter.Func {
	return filter.NewFunc(name, fn)
}

func TestFilterEachStage_ForwardsOriginalWhenKept(t *testing.T) {
	rep := &collectingReporter{}
	var seen []tuple.Tuple
	f := removeWhen("drop-b-nil", func(args *tuple.Entry) (bool, error) {
		seen = append(seen, append(tuple.Tuple(nil), args.Tuple()...))
		return args.GetAt(0) == nil, nil
	})

	stage := NewFilterEachStage(newRuntime(rep), "filter", abc, tuple.Named("b"), f)
	down := &capture{}
	stage.Bind(down)
	require.NoError(t, stage.Initialize())

	kept := entryOf(t, abc, 1, "x", 3)
	removed := entryOf(t, abc, 1, nil, 3)
	stage.Receive(nil, kept)
	stage.Receive(nil, removed)

	require.Len(t, down.entries, 1)
	assert.Same(t, kept, down.entries[0], "forwarded entry must be the original record")
	assert.Equal(t, []tuple.Tuple{{"x"}, {nil}}, seen, "filter sees only its selected argument")
	assert.Empty(t, rep.failures)
}

func TestFilterEachStage_Failures(t *testing.T) {
	boom := stderrors.New("boom")
	tests := []struct {
		name    string
		fn      func(args *tuple.Entry) (bool, error)
		code    errors.ErrorCode
		wrapped bool
		cause   error
	}{
		{
			name: "domain failure reported as raised",
			fn: func(*tuple.Entry) (bool, error) {
				return false, errors.OperationFailure("amount is negative")
			},
			code: errors.ErrCodeOperationFailure,
		},
		{
			name:    "plain error wrapped",
			fn:      func(*tuple.Entry) (bool, error) { return false, boom },
			code:    errors.ErrCodeOperatorFailed,
			wrapped: true,
			cause:   boom,
		},
		{
			name:    "panic wrapped",
			fn:      func(*tuple.Entry) (bool, error) { panic("index out of range") },
			code:    errors.ErrCodeOperatorFailed,
			wrapped: true,
		},
		{
			name: "panic with domain error still wrapped",
			fn: func(*tuple.Entry) (bool, error) {
				panic(errors.OperationFailure("raised by panic"))
			},
			code:    errors.ErrCodeOperatorFailed,
			wrapped: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := &collectingReporter{}
			rt := newRuntime(rep)
			stage := NewFilterEachStage(rt, "filter", abc, tuple.All, removeWhen("check", tt.fn))
			down := &capture{}
			stage.Bind(down)
			require.NoError(t, stage.Initialize())

			stage.Receive(nil, entryOf(t, abc, 1, 2, 3))

			assert.Empty(t, down.entries, "failed record must not be forwarded")
			require.Len(t, rep.failures, 1)
			f := rep.failures[0]
			assert.Equal(t, tt.code, f.Code)
			assert.True(t, errors.HasCode(f.Err, tt.code))
			assert.Equal(t, "filter", f.Stage)
			assert.Equal(t, "check", f.Operation)
			assert.Equal(t, tuple.Tuple{1, 2, 3}, f.Record)
			if tt.wrapped {
				appErr, ok := errors.AsAppError(f.Err)
				require.True(t, ok)
				assert.Equal(t, "operator failed executing operation", appErr.Message)
				assert.Equal(t, "check", appErr.Operation)
			}
			if tt.cause != nil {
				assert.ErrorIs(t, f.Err, tt.cause)
			}
			assert.Equal(t, int64(1), rt.Failures())
			assert.Equal(t, int64(1), rt.Process().Counter(CounterGroup, string(tt.code)))
		})
	}
}

func TestFilterEachStage_ContinuesAfterFailure(t *testing.T) {
	rep := &collectingReporter{}
	calls := 0
	f := removeWhen("flaky", func(*tuple.Entry) (bool, error) {
		calls++
		if calls == 1 {
			panic("first record explodes")
		}
		return false, nil
	})
	stage := NewFilterEachStage(newRuntime(rep), "filter", abc, tuple.All, f)
	down := &capture{}
	stage.Bind(down)
	require.NoError(t, stage.Initialize())

	stage.Receive(nil, entryOf(t, abc, 1, 2, 3))
	stage.Receive(nil, entryOf(t, abc, 4, 5, 6))

	assert.Len(t, rep.failures, 1)
	assert.Equal(t, []tuple.Tuple{{4, 5, 6}}, down.values)
}

func TestFilterEachStage_Combinator(t *testing.T) {
	re, err := filter.NewRegex(`^[a-z]+@`, false)
	require.NoError(t, err)
	f := filter.NewAndOn(tuple.Named("a"), filter.NewNotNull(), tuple.Named("b"), re)
	// NotNull removes non-nil values: keep records whose a is nil and
	// whose b looks like an address.
	stage := NewFilterEachStage(newRuntime(&collectingReporter{}), "filter", abc, tuple.Named("a", "b"), filter.NewNot(filter.NewNot(f)))
	down := &capture{}
	stage.Bind(down)
	require.NoError(t, stage.Initialize())

	for _, values := range []tuple.Tuple{
		{nil, "ann@example.com", 1},
		{"x", "ann@example.com", 2},
		{nil, "not an address", 3},
	} {
		stage.Receive(nil, entryOf(t, abc, values...))
	}
	assert.Equal(t, []tuple.Tuple{{nil, "ann@example.com", 1}}, down.values)
}

func TestFilterEachStage_InitializeErrors(t *testing.T) {
	rt := newRuntime(nil)

	unbound := NewFilterEachStage(rt, "f", abc, tuple.All, filter.NewNull())
	assert.True(t, errors.HasCode(unbound.Initialize(), errors.ErrCodeInvalidAssembly))

	badSelector := NewFilterEachStage(rt, "f", abc, tuple.Named("missing"), filter.NewNull())
	badSelector.Bind(&capture{})
	assert.True(t, errors.HasCode(badSelector.Initialize(), errors.ErrCodeInvalidSelector))

	badChild := NewFilterEachStage(rt, "f", abc, tuple.All, filter.NewNotOn(tuple.Named("missing"), filter.NewNull()))
	badChild.Bind(&capture{})
	err := badChild.Initialize()
	assert.True(t, errors.HasCode(err, errors.ErrCodeOperatorFailed))
	assert.True(t, errors.HasCode(stderrors.Unwrap(err), errors.ErrCodeInvalidSelector))
}

var words = tuple.Names("word")

func splitWords(name string) *operation.FunctionFunc {
	return operation.NewFunction(name, words, func(args *tuple.Entry, out operation.Collector) error {
		for i := 0; i < args.Len(); i++ {
			if err := out.Add(tuple.Tuple{args.StringAt(i)}); err != nil {
				return err
			}
		}
		return nil
	})
}

func TestFunctionEachStage(t *testing.T) {
	rep := &collectingReporter{}
	stage := NewFunctionEachStage(newRuntime(rep), "split", abc, tuple.Named("a", "c"), splitWords("split"))
	down := &capture{}
	stage.Bind(down)
	require.NoError(t, stage.Initialize())
	assert.Same(t, words, stage.Outgoing())

	stage.Receive(nil, entryOf(t, abc, "x", "y", "z"))

	assert.Equal(t, []tuple.Tuple{{"x"}, {"z"}}, down.values)
	for _, e := range down.entries {
		assert.Same(t, words, e.Schema())
	}
	assert.Empty(t, rep.failures)
}

func TestFunctionEachStage_ArityMismatch(t *testing.T) {
	rep := &collectingReporter{}
	bad := operation.NewFunction("bad", words, func(_ *tuple.Entry, out operation.Collector) error {
		_ = out.Add(tuple.Tuple{"one", "two"})
		return nil
	})
	stage := NewFunctionEachStage(newRuntime(rep), "bad", abc, tuple.All, bad)
	down := &capture{}
	stage.Bind(down)
	require.NoError(t, stage.Initialize())

	stage.Receive(nil, entryOf(t, abc, 1, 2, 3))

	assert.Empty(t, down.entries)
	require.Len(t, rep.failures, 1)
	assert.Equal(t, errors.ErrCodeArityMismatch, rep.failures[0].Code)
}

func TestFunctionEachStage_ForwardsBeforeFailure(t *testing.T) {
	rep := &collectingReporter{}
	partial := operation.NewFunction("partial", words, func(_ *tuple.Entry, out operation.Collector) error {
		if err := out.Add(tuple.Tuple{"kept"}); err != nil {
			return err
		}
		if err := out.Add(tuple.Tuple{"one", "two"}); err != nil {
			return err
		}
		return out.Add(tuple.Tuple{"never"})
	})
	stage := NewFunctionEachStage(newRuntime(rep), "partial", abc, tuple.All, partial)
	down := &capture{}
	stage.Bind(down)
	require.NoError(t, stage.Initialize())

	stage.Receive(nil, entryOf(t, abc, 1, 2, 3))

	assert.Equal(t, []tuple.Tuple{{"kept"}}, down.values)
	require.Len(t, rep.failures, 1)
	assert.Equal(t, errors.ErrCodeArityMismatch, rep.failures[0].Code)
	assert.Equal(t, tuple.Tuple{1, 2, 3}, rep.failures[0].Record)
}

func TestSourceStage_ArityMismatch(t *testing.T) {
	rep := &collectingReporter{}
	source := NewSourceStage(newRuntime(rep), "source", abc)
	down := &capture{}
	source.Bind(down)
	require.NoError(t, source.Initialize())

	err := source.Run(context.Background(), FromSlice([]tuple.Tuple{{1, 2, 3}, {1, 2}, {4, 5, 6}}))
	require.NoError(t, err)

	assert.Equal(t, []tuple.Tuple{{1, 2, 3}, {4, 5, 6}}, down.values)
	require.Len(t, rep.failures, 1)
	assert.Equal(t, errors.ErrCodeArityMismatch, rep.failures[0].Code)
	assert.Equal(t, tuple.Tuple{1, 2}, rep.failures[0].Record)
	for _, e := range down.entries {
		assert.Same(t, down.entries[0], e, "source reuses its scratch entry")
	}
}

func TestSourceStage_ContextCancelled(t *testing.T) {
	source := NewSourceStage(newRuntime(nil), "source", abc)
	source.Bind(&capture{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := source.Run(ctx, FromChannel(make(chan tuple.Tuple)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSinkStage_Failure(t *testing.T) {
	rep := &collectingReporter{}
	sink := NewSinkStage(newRuntime(rep), "store", abc, func(*tuple.Entry) error {
		return fmt.Errorf("disk full")
	})
	require.NoError(t, sink.Initialize())

	sink.Receive(nil, entryOf(t, abc, 1, 2, 3))

	require.Len(t, rep.failures, 1)
	assert.Equal(t, errors.ErrCodeSinkFailed, rep.failures[0].Code)
	assert.Equal(t, "store", rep.failures[0].Operation)
}

func TestSplit(t *testing.T) {
	split := NewSplit(newRuntime(nil), "split", abc)
	assert.True(t, errors.HasCode(split.Initialize(), errors.ErrCodeInvalidAssembly))

	left, right := &capture{}, &capture{}
	split.Bind(left)
	split.Bind(right)
	require.NoError(t, split.Initialize())

	e := entryOf(t, abc, 1, 2, 3)
	split.Receive(nil, e)
	assert.Same(t, e, left.entries[0])
	assert.Same(t, e, right.entries[0])
	assert.Len(t, split.Branches(), 2)
}

func TestFailureEntry(t *testing.T) {
	f := Failure{Schema: abc, Record: tuple.Tuple{1, 2, 3}}
	e, err := f.Entry()
	require.NoError(t, err)
	assert.Equal(t, tuple.Tuple{1, 2, 3}, e.Tuple())
}

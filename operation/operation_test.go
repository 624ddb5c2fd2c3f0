package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/ductline/logger"
	"github.com/kbukum/ductline/tuple"
)

func TestCall_EnterRestore(t *testing.T) {
	outer := tuple.NewEntry(tuple.Names("a", "b"))
	inner := tuple.NewEntry(tuple.Names("b"))
	call := NewCall(outer)
	call.SetContext("outer")

	saved := call.Enter(inner, "inner")
	assert.Same(t, inner, call.Arguments())
	assert.Equal(t, "inner", call.Context())

	call.Restore(saved)
	assert.Same(t, outer, call.Arguments())
	assert.Equal(t, "outer", call.Context())
}

func TestCall_RestoreOnPanic(t *testing.T) {
	outer := tuple.NewEntry(tuple.Names("a"))
	call := NewCall(outer)

	func() {
		defer func() { _ = recover() }()
		defer call.Restore(call.Enter(tuple.NewEntry(tuple.Empty), 42))
		panic("boom")
	}()

	assert.Same(t, outer, call.Arguments(), "arguments restored after panic")
	assert.Nil(t, call.Context(), "context restored after panic")
}

func TestProcess_Counters(t *testing.T) {
	p := NewProcess(logger.Nop())
	require.NotEmpty(t, p.ID())
	assert.NotEqual(t, p.ID(), NewProcess(logger.Nop()).ID())

	p.Increment("filter", "removed", 2)
	p.Increment("filter", "removed", 1)
	p.Increment("sink", "written", 5)

	assert.EqualValues(t, 3, p.Counter("filter", "removed"))
	assert.Zero(t, p.Counter("missing", "x"))

	snapshot := p.Counters()
	snapshot["sink"]["written"] = 100
	assert.EqualValues(t, 5, p.Counter("sink", "written"), "snapshot mutation leaked into process")
}

type collected []tuple.Tuple

func (c *collected) Add(t tuple.Tuple) error {
	*c = append(*c, t)
	return nil
}

func TestFunctionFunc(t *testing.T) {
	declared := tuple.Names("word")
	split := NewFunction("split", declared, func(args *tuple.Entry, out Collector) error {
		for _, w := range []string{args.StringAt(0), args.StringAt(1)} {
			if err := out.Add(tuple.Tuple{w}); err != nil {
				return err
			}
		}
		return nil
	})

	args, err := tuple.NewEntryWith(tuple.Names("a", "b"), tuple.Tuple{"x", "y"})
	require.NoError(t, err)
	var out collected
	call := NewCall(args)
	call.SetOutput(&out)

	p := NewProcess(logger.Nop())
	require.NoError(t, split.Prepare(p, call))
	require.NoError(t, split.Operate(p, call))
	split.Cleanup(p, call)

	assert.Equal(t, "split", split.Name())
	assert.Same(t, declared, split.Declared())
	assert.Equal(t, collected{{"x"}, {"y"}}, out)
}

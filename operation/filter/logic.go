package filter

import (
	"fmt"

	"github.com/kbukum/ductline/errors"
	"github.com/kbukum/ductline/operation"
	"github.com/kbukum/ductline/tuple"
)

// Logic is the shared core of the combinators. Each child filter reads its
// own selection of the combinator's arguments and keeps its own private
// context; the combinator's call is swapped to the child's slot for the
// duration of every child invocation.
type Logic struct {
	operation.Base
	selectors []tuple.Fields
	filters   []operation.Filter
}

// logicContext is the per-instance state of a Logic, held as its call
// context between Prepare and Cleanup.
type logicContext struct {
	selectors []*tuple.Selector
	entries   []*tuple.Entry
	buffers   []tuple.Tuple
	contexts  []any
}

func newLogic(name string, selectors []tuple.Fields, filters []operation.Filter) Logic {
	return Logic{
		Base:      operation.NewBase(name),
		selectors: selectors,
		filters:   filters,
	}
}

func allFields(n int) []tuple.Fields {
	fields := make([]tuple.Fields, n)
	for i := range fields {
		fields[i] = tuple.All
	}
	return fields
}

// Filters returns the child filters.
func (l *Logic) Filters() []operation.Filter {
	return append([]operation.Filter(nil), l.filters...)
}

func (l *Logic) validate() error {
	if len(l.filters) == 0 {
		return errors.InvalidAssembly(l.Name() + " requires at least one filter")
	}
	if len(l.selectors) != len(l.filters) {
		return errors.InvalidAssembly(fmt.Sprintf("%s has %d selectors for %d filters", l.Name(), len(l.selectors), len(l.filters)))
	}
	for i, f := range l.filters {
		if f == nil {
			return errors.InvalidAssembly(fmt.Sprintf("%s filter %d is nil", l.Name(), i))
		}
	}
	return nil
}

// Prepare resolves every child selector against the incoming arguments,
// prepares every child in its own slot and installs the combinator state
// as the call context. When a child fails to prepare, the children already
// prepared are cleaned up and no state is installed.
func (l *Logic) Prepare(p *operation.Process, call *operation.Call) error {
	if err := l.validate(); err != nil {
		return err
	}

	incoming := call.Arguments().Schema()
	lc := &logicContext{
		selectors: make([]*tuple.Selector, len(l.filters)),
		entries:   make([]*tuple.Entry, len(l.filters)),
		buffers:   make([]tuple.Tuple, len(l.filters)),
		contexts:  make([]any, len(l.filters)),
	}
	for i := range l.filters {
		sel, err := l.selectors[i].Resolve(incoming)
		if err != nil {
			return err
		}
		lc.selectors[i] = sel
		lc.entries[i] = tuple.NewEntry(sel.Schema())
		lc.buffers[i] = make(tuple.Tuple, sel.Len())
	}

	for i := range l.filters {
		if err := l.prepareChild(p, call, lc, i); err != nil {
			for j := i - 1; j >= 0; j-- {
				l.cleanupChild(p, call, lc, j)
			}
			return err
		}
	}
	call.SetContext(lc)
	return nil
}

func (l *Logic) prepareChild(p *operation.Process, call *operation.Call, lc *logicContext, i int) error {
	saved := call.Enter(lc.entries[i], nil)
	defer func() {
		lc.contexts[i] = call.Context()
		call.Restore(saved)
	}()
	return l.filters[i].Prepare(p, call)
}

// Cleanup cleans up every child in its own slot and drops the combinator
// state.
func (l *Logic) Cleanup(p *operation.Process, call *operation.Call) {
	lc, ok := call.Context().(*logicContext)
	if !ok {
		return
	}
	for i := range l.filters {
		l.cleanupChild(p, call, lc, i)
	}
	call.SetContext(nil)
}

func (l *Logic) cleanupChild(p *operation.Process, call *operation.Call, lc *logicContext, i int) {
	defer call.Restore(call.Enter(lc.entries[i], lc.contexts[i]))
	l.filters[i].Cleanup(p, call)
}

func (l *Logic) state(call *operation.Call) (*logicContext, error) {
	lc, ok := call.Context().(*logicContext)
	if !ok {
		return nil, errors.InvalidAssembly(l.Name() + " invoked before Prepare")
	}
	return lc, nil
}

// evaluate runs child i against its selection of the current arguments.
// The call's arguments and context are restored on every exit path,
// including a panicking child; whatever context the child left behind is
// kept in its slot.
func (l *Logic) evaluate(p *operation.Process, call *operation.Call, lc *logicContext, i int) (bool, error) {
	lc.buffers[i] = call.Arguments().SelectInto(lc.selectors[i], lc.buffers[i])
	if err := lc.entries[i].SetTuple(lc.buffers[i]); err != nil {
		return false, err
	}

	saved := call.Enter(lc.entries[i], lc.contexts[i])
	defer func() {
		lc.contexts[i] = call.Context()
		call.Restore(saved)
	}()
	return l.filters[i].IsRemove(p, call)
}

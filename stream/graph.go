package stream

import (
	"context"
	"fmt"

	"github.com/kbukum/ductline/errors"
	"github.com/kbukum/ductline/operation"
	"github.com/kbukum/ductline/tuple"
)

// Graph describes a chain of stages fed by one source. A Graph is only a
// description: Build instantiates a fresh chain, exclusively owned by the
// caller, every time it is called, so one Graph serves any number of
// pipeline instances.
//
//	g := stream.NewGraph("orders", schema).
//		Filter("valid", tuple.Named("id", "amount"), filter.NewNotNull()).
//		Each("enrich", tuple.All, enrich).
//		Sink("store", store)
type Graph struct {
	name   string
	schema *tuple.Schema
	steps  []step
}

// NewGraph creates a graph whose source produces records of schema.
func NewGraph(name string, schema *tuple.Schema) *Graph {
	return &Graph{name: name, schema: schema}
}

// NewBranch creates a headless graph to be used as a Split branch.
func NewBranch() *Graph {
	return &Graph{}
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// Schema returns the source schema.
func (g *Graph) Schema() *tuple.Schema { return g.schema }

// Filter appends a filter stage.
func (g *Graph) Filter(name string, arguments tuple.Fields, f operation.Filter) *Graph {
	g.steps = append(g.steps, filterStep{name: name, arguments: arguments, filter: f})
	return g
}

// Each appends a function stage.
func (g *Graph) Each(name string, arguments tuple.Fields, fn operation.Function) *Graph {
	g.steps = append(g.steps, eachStep{name: name, arguments: arguments, function: fn})
	return g
}

// Sink appends the terminal sink.
func (g *Graph) Sink(name string, sink SinkFunc) *Graph {
	g.steps = append(g.steps, sinkStep{name: name, sink: sink})
	return g
}

// Split appends a terminal split feeding every branch.
func (g *Graph) Split(name string, branches ...*Graph) *Graph {
	g.steps = append(g.steps, splitStep{name: name, branches: branches})
	return g
}

// Build instantiates the chain for one pipeline instance.
func (g *Graph) Build(rt *Runtime) (*Chain, error) {
	if g.schema == nil {
		return nil, errors.InvalidAssembly("graph " + g.name + " has no source schema")
	}
	source := NewSourceStage(rt, g.name, g.schema)
	head, ducts, err := buildSteps(rt, g.steps, g.schema)
	if err != nil {
		return nil, err
	}
	source.Bind(head)
	return &Chain{rt: rt, source: source, ducts: ducts}, nil
}

// buildSteps instantiates steps in order and links them. It returns the
// first duct and every duct created, parents before children.
func buildSteps(rt *Runtime, steps []step, incoming *tuple.Schema) (Duct, []Duct, error) {
	if len(steps) == 0 {
		return nil, nil, errors.InvalidAssembly("graph has no stages")
	}
	var (
		all  []Duct
		prev Duct
		head Duct
	)
	schema := incoming
	for i, st := range steps {
		if st.terminal() && i != len(steps)-1 {
			return nil, nil, errors.InvalidAssembly(fmt.Sprintf("stage %q must be the last of its graph", st.stageName()))
		}
		d, sub, out, err := st.build(rt, schema)
		if err != nil {
			return nil, nil, err
		}
		if prev == nil {
			head = d
		} else {
			prev.Bind(d)
		}
		all = append(all, d)
		all = append(all, sub...)
		prev, schema = d, out
	}
	if last := steps[len(steps)-1]; !last.terminal() {
		return nil, nil, errors.InvalidAssembly(fmt.Sprintf("graph ends with %q instead of a sink or split", last.stageName()))
	}
	return head, all, nil
}

type step interface {
	stageName() string
	terminal() bool
	build(rt *Runtime, incoming *tuple.Schema) (d Duct, sub []Duct, out *tuple.Schema, err error)
}

type filterStep struct {
	name      string
	arguments tuple.Fields
	filter    operation.Filter
}

func (s filterStep) stageName() string { return s.name }
func (s filterStep) terminal() bool    { return false }

func (s filterStep) build(rt *Runtime, incoming *tuple.Schema) (Duct, []Duct, *tuple.Schema, error) {
	st := NewFilterEachStage(rt, s.name, incoming, s.arguments, s.filter)
	return st, nil, st.Outgoing(), nil
}

type eachStep struct {
	name      string
	arguments tuple.Fields
	function  operation.Function
}

func (s eachStep) stageName() string { return s.name }
func (s eachStep) terminal() bool    { return false }

func (s eachStep) build(rt *Runtime, incoming *tuple.Schema) (Duct, []Duct, *tuple.Schema, error) {
	st := NewFunctionEachStage(rt, s.name, incoming, s.arguments, s.function)
	return st, nil, st.Outgoing(), nil
}

type sinkStep struct {
	name string
	sink SinkFunc
}

func (s sinkStep) stageName() string { return s.name }
func (s sinkStep) terminal() bool    { return true }

func (s sinkStep) build(rt *Runtime, incoming *tuple.Schema) (Duct, []Duct, *tuple.Schema, error) {
	st := NewSinkStage(rt, s.name, incoming, s.sink)
	return st, nil, incoming, nil
}

type splitStep struct {
	name     string
	branches []*Graph
}

func (s splitStep) stageName() string { return s.name }
func (s splitStep) terminal() bool    { return true }

func (s splitStep) build(rt *Runtime, incoming *tuple.Schema) (Duct, []Duct, *tuple.Schema, error) {
	split := NewSplit(rt, s.name, incoming)
	var sub []Duct
	for i, b := range s.branches {
		if b == nil {
			return nil, nil, nil, errors.InvalidAssembly(fmt.Sprintf("split %q branch %d is nil", s.name, i))
		}
		head, ducts, err := buildSteps(rt, b.steps, incoming)
		if err != nil {
			return nil, nil, nil, err
		}
		split.Bind(head)
		sub = append(sub, ducts...)
	}
	return split, sub, incoming, nil
}

// Chain is one instantiated graph: a source and the stages it feeds. A
// chain belongs to a single pipeline instance.
type Chain struct {
	rt          *Runtime
	source      *SourceStage
	ducts       []Duct
	initialized bool
	initErr     error
	cleaned     bool
}

// Runtime returns the chain runtime.
func (c *Chain) Runtime() *Runtime { return c.rt }

// Source returns the head of the chain.
func (c *Chain) Source() *SourceStage { return c.source }

// Initialize initializes every stage, downstream stages first. It runs at
// most once; later calls return the first call's result.
func (c *Chain) Initialize() error {
	if c.initialized {
		return c.initErr
	}
	c.initialized = true
	c.initErr = c.initialize()
	return c.initErr
}

func (c *Chain) initialize() error {
	for i := len(c.ducts) - 1; i >= 0; i-- {
		if err := c.ducts[i].Initialize(); err != nil {
			return err
		}
	}
	return c.source.Initialize()
}

// Run initializes the chain if needed and pushes every record of iter
// through it.
func (c *Chain) Run(ctx context.Context, iter Iterator) error {
	if err := c.Initialize(); err != nil {
		_ = iter.Close()
		return err
	}
	return c.source.Run(ctx, iter)
}

// Cleanup cleans up every stage once, upstream stages first.
func (c *Chain) Cleanup() {
	if c.cleaned {
		return
	}
	c.cleaned = true
	c.source.Cleanup()
	for _, d := range c.ducts {
		d.Cleanup()
	}
}

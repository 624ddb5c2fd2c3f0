package filter

import (
	"github.com/kbukum/ductline/operation"
	"github.com/kbukum/ductline/tuple"
)

// Not removes a record exactly when its child keeps it.
type Not struct {
	Logic
}

// NewNot negates f, which sees all of the arguments.
func NewNot(f operation.Filter) *Not {
	return NewNotOn(tuple.All, f)
}

// NewNotOn negates f, which sees the arguments chosen by sel.
func NewNotOn(sel tuple.Fields, f operation.Filter) *Not {
	return &Not{Logic: newLogic("Not", []tuple.Fields{sel}, []operation.Filter{f})}
}

// IsRemove implements operation.Filter.
func (n *Not) IsRemove(p *operation.Process, call *operation.Call) (bool, error) {
	lc, err := n.state(call)
	if err != nil {
		return false, err
	}
	remove, err := n.evaluate(p, call, lc, 0)
	if err != nil {
		return false, err
	}
	return !remove, nil
}

// And keeps a record only when every child keeps it: it removes as soon as
// one child removes.
type And struct {
	Logic
}

// NewAnd combines filters, each seeing all of the arguments.
func NewAnd(filters ...operation.Filter) *And {
	return &And{Logic: newLogic("And", allFields(len(filters)), filters)}
}

// NewAndOn combines two filters, each with its own selection of the
// arguments.
func NewAndOn(lhsSel tuple.Fields, lhs operation.Filter, rhsSel tuple.Fields, rhs operation.Filter) *And {
	return NewAndSelected([]tuple.Fields{lhsSel, rhsSel}, []operation.Filter{lhs, rhs})
}

// NewAndSelected combines filters with one selector per filter. A count
// mismatch is reported by Prepare.
func NewAndSelected(selectors []tuple.Fields, filters []operation.Filter) *And {
	return &And{Logic: newLogic("And", selectors, filters)}
}

// IsRemove implements operation.Filter.
func (a *And) IsRemove(p *operation.Process, call *operation.Call) (bool, error) {
	lc, err := a.state(call)
	if err != nil {
		return false, err
	}
	for i := range a.filters {
		remove, err := a.evaluate(p, call, lc, i)
		if err != nil {
			return false, err
		}
		if remove {
			return true, nil
		}
	}
	return false, nil
}

// Or keeps a record when any child keeps it: it removes only when every
// child removes.
type Or struct {
	Logic
}

// NewOr combines filters, each seeing all of the arguments.
func NewOr(filters ...operation.Filter) *Or {
	return &Or{Logic: newLogic("Or", allFields(len(filters)), filters)}
}

// NewOrOn combines two filters, each with its own selection of the
// arguments.
func NewOrOn(lhsSel tuple.Fields, lhs operation.Filter, rhsSel tuple.Fields, rhs operation.Filter) *Or {
	return NewOrSelected([]tuple.Fields{lhsSel, rhsSel}, []operation.Filter{lhs, rhs})
}

// NewOrSelected combines filters with one selector per filter.
func NewOrSelected(selectors []tuple.Fields, filters []operation.Filter) *Or {
	return &Or{Logic: newLogic("Or", selectors, filters)}
}

// IsRemove implements operation.Filter.
func (o *Or) IsRemove(p *operation.Process, call *operation.Call) (bool, error) {
	lc, err := o.state(call)
	if err != nil {
		return false, err
	}
	for i := range o.filters {
		remove, err := o.evaluate(p, call, lc, i)
		if err != nil {
			return false, err
		}
		if !remove {
			return false, nil
		}
	}
	return true, nil
}

// Xor removes a record when exactly one of its two children removes it.
type Xor struct {
	Logic
}

// NewXor combines exactly two filters, each seeing all of the arguments.
func NewXor(lhs, rhs operation.Filter) *Xor {
	return NewXorOn(tuple.All, lhs, tuple.All, rhs)
}

// NewXorOn combines two filters, each with its own selection of the
// arguments.
func NewXorOn(lhsSel tuple.Fields, lhs operation.Filter, rhsSel tuple.Fields, rhs operation.Filter) *Xor {
	return &Xor{Logic: newLogic("Xor", []tuple.Fields{lhsSel, rhsSel}, []operation.Filter{lhs, rhs})}
}

// IsRemove implements operation.Filter. Both children are always evaluated.
func (x *Xor) IsRemove(p *operation.Process, call *operation.Call) (bool, error) {
	lc, err := x.state(call)
	if err != nil {
		return false, err
	}
	lhs, err := x.evaluate(p, call, lc, 0)
	if err != nil {
		return false, err
	}
	rhs, err := x.evaluate(p, call, lc, 1)
	if err != nil {
		return false, err
	}
	return lhs != rhs, nil
}

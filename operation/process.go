package operation

import (
	"github.com/google/uuid"

	"github.com/kbukum/ductline/logger"
)

// Process carries the per-instance services an operation may use: an
// identity, a logger and named counters. Each pipeline instance owns one
// Process; it is not safe for concurrent use.
type Process struct {
	id       string
	log      *logger.Logger
	counters map[string]map[string]int64
}

// NewProcess creates a process with a fresh random id. A nil log uses the
// registered "operation" component logger.
func NewProcess(log *logger.Logger) *Process {
	id := uuid.NewString()
	if log == nil {
		log = logger.Get("operation")
	}
	return &Process{
		id:       id,
		log:      log.WithFields(logger.Fields(logger.FieldInstance, id)),
		counters: make(map[string]map[string]int64),
	}
}

// ID returns the pipeline instance id.
func (p *Process) ID() string { return p.id }

// Logger returns a logger tagged with the instance id.
func (p *Process) Logger() *logger.Logger { return p.log }

// Increment adds n to a counter.
func (p *Process) Increment(group, counter string, n int64) {
	g, ok := p.counters[group]
	if !ok {
		g = make(map[string]int64)
		p.counters[group] = g
	}
	g[counter] += n
}

// Counter returns the value of a counter; zero if it was never incremented.
func (p *Process) Counter(group, counter string) int64 {
	return p.counters[group][counter]
}

// Counters returns a copy of every counter, by group.
func (p *Process) Counters() map[string]map[string]int64 {
	out := make(map[string]map[string]int64, len(p.counters))
	for group, values := range p.counters {
		g := make(map[string]int64, len(values))
		for k, v := range values {
			g[k] = v
		}
		out[group] = g
	}
	return out
}

// Package probe runs optional capability lookups where any lookup may be
// missing without failing the others.
package probe

import "context"

// Probe is one named lookup.
type Probe struct {
	Name string
	Run  func(ctx context.Context) (string, error)
}

// Observer is told about every failed probe.
type Observer func(name string, err error)

// Set holds the results of a run keyed by probe name.
type Set struct {
	values map[string]string
	absent []string
}

// Run executes probes one after another in order. A failing probe is
// recorded as absent and never stops the rest.
func Run(ctx context.Context, observe Observer, probes ...Probe) Set {
	s := Set{values: make(map[string]string, len(probes))}
	for _, p := range probes {
		v, err := p.Run(ctx)
		if err != nil {
			s.absent = append(s.absent, p.Name)
			if observe != nil {
				observe(p.Name, err)
			}
			continue
		}
		s.values[p.Name] = v
	}
	return s
}

// Get returns the value of name, or nil when that probe failed or never ran.
func (s Set) Get(name string) *string {
	v, ok := s.values[name]
	if !ok {
		return nil
	}
	return &v
}

// Absent lists the failed probes in run order.
func (s Set) Absent() []string {
	return append([]string(nil), s.absent...)
}

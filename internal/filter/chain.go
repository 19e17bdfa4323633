// SPDX-License-Identifier: MIT
package filter

import (
	"errors"
	"fmt"

	"voccal/internal/dsp"
)

// ErrChainReleased is returned when a released chain is asked to process.
var ErrChainReleased = errors.New("filter: chain released")

// Chain is the ordered, freshly built stage list for one preview or
// render. It is used by a single goroutine and released when that
// operation ends.
type Chain struct {
	desc     Descriptor
	format   dsp.Format
	stages   []dsp.Stage
	released bool
}

// Build resolves id and instantiates its recipe against f. Nothing starts
// processing until the caller feeds blocks to Process. If any stage fails
// to build, the stages built so far are released and no chain is returned.
func Build(id string, f dsp.Format) (*Chain, error) {
	desc, err := Resolve(id)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	specs := recipes[id]
	stages := make([]dsp.Stage, 0, len(specs))
	for i, spec := range specs {
		st, err := spec.New(f)
		if err != nil {
			releaseStages(stages)
			return nil, fmt.Errorf("filter: building %s stage %d (%s): %w", id, i, spec.Kind(), err)
		}
		stages = append(stages, st)
	}
	return &Chain{desc: desc, format: f, stages: stages}, nil
}

// Descriptor returns the catalog entry the chain was built from.
func (c *Chain) Descriptor() Descriptor { return c.desc }

// Format returns the processing format the stages were built for.
func (c *Chain) Format() dsp.Format { return c.format }

// Len returns the number of stages.
func (c *Chain) Len() int { return len(c.stages) }

// Kinds lists the stage kinds in processing order.
func (c *Chain) Kinds() []dsp.Kind {
	kinds := make([]dsp.Kind, len(c.stages))
	for i, st := range c.stages {
		kinds[i] = st.Kind()
	}
	return kinds
}

// Process runs block through every stage in order, in place. block must
// hold exactly Format().Channels equal-length slices.
func (c *Chain) Process(block [][]float64) error {
	if c.released {
		return ErrChainReleased
	}
	if len(block) != c.format.Channels {
		return fmt.Errorf("filter: block has %d channels, chain expects %d", len(block), c.format.Channels)
	}
	for _, st := range c.stages {
		st.Process(block)
	}
	return nil
}

// Release resets and drops every stage. It is safe to call more than once.
func (c *Chain) Release() {
	if c.released {
		return
	}
	releaseStages(c.stages)
	c.stages = nil
	c.released = true
}

// Released reports whether Release has been called.
func (c *Chain) Released() bool { return c.released }

func releaseStages(stages []dsp.Stage) {
	for i := range stages {
		stages[i].Reset()
		stages[i] = nil
	}
}

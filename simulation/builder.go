package simulation

import (
	"github.com/sarchlab/vmmgr/mem/vm/mmu"
	"github.com/sarchlab/vmmgr/tracing"
)

// Builder can be used to build a Runner.
type Builder struct {
	mmu     *mmu.Comp
	tracers []tracing.Tracer
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithMMU sets the MMU that translates the addresses.
func (b Builder) WithMMU(m *mmu.Comp) Builder {
	b.mmu = m
	return b
}

// WithTracer adds a tracer that receives every translation.
func (b Builder) WithTracer(t tracing.Tracer) Builder {
	b.tracers = append(b.tracers[:len(b.tracers):len(b.tracers)], t)
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.mmu == nil {
		panic("mmu is not set")
	}
}

// Build builds the Runner and hooks the tracers to the MMU.
func (b Builder) Build() *Runner {
	b.parametersMustBeValid()

	for _, t := range b.tracers {
		b.mmu.AcceptHook(tracing.NewTranslationHook(t))
	}

	return &Runner{mmu: b.mmu}
}

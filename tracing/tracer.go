// Package tracing records the translations performed by an MMU.
package tracing

import (
	"github.com/sarchlab/vmmgr/mem/vm/mmu"
	"github.com/sarchlab/vmmgr/sim"
)

// A Tracer can collect translation traces
type Tracer interface {
	TraceTranslation(t mmu.Translation)
}

// TranslationHook forwards the translations reported by an MMU to a Tracer.
type TranslationHook struct {
	tracer Tracer
}

// NewTranslationHook creates a hook that feeds the tracer.
func NewTranslationHook(tracer Tracer) *TranslationHook {
	return &TranslationHook{tracer: tracer}
}

// Func implements sim.Hook.
func (h *TranslationHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != mmu.HookPosTranslationDone {
		return
	}

	t, ok := ctx.Item.(mmu.Translation)
	if !ok {
		return
	}

	h.tracer.TraceTranslation(t)
}

// CollectTracer keeps every translation in memory.
type CollectTracer struct {
	Translations []mmu.Translation
}

// NewCollectTracer creates a new CollectTracer.
func NewCollectTracer() *CollectTracer {
	return &CollectTracer{}
}

// TraceTranslation appends the translation.
func (t *CollectTracer) TraceTranslation(translation mmu.Translation) {
	t.Translations = append(t.Translations, translation)
}

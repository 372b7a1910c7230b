package tracing

import (
	"fmt"
	"io"

	"github.com/sarchlab/vmmgr/mem/vm/mmu"
)

// TextTracer prints one human readable record per translation.
type TextTracer struct {
	w   io.Writer
	err error
}

// NewTextTracer creates a tracer that writes into w.
func NewTextTracer(w io.Writer) *TextTracer {
	return &TextTracer{w: w}
}

// TraceTranslation prints the logical address, the physical address and the
// byte found there.
func (t *TextTracer) TraceTranslation(translation mmu.Translation) {
	if t.err != nil {
		return
	}

	_, t.err = fmt.Fprintf(t.w,
		"\nLogical address being translated: %d\n"+
			"Corresponding physical address: %d\n"+
			"Signed byte value at this physical address: '%d'\n",
		translation.Logical,
		translation.Physical,
		translation.Value,
	)
}

// Err returns the first write error.
func (t *TextTracer) Err() error {
	return t.err
}

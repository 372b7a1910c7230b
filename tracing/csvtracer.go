package tracing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/vmmgr/mem/vm/mmu"
)

var csvHeader = []string{
	"seq", "logical", "page", "offset", "frame", "physical", "value", "kind",
}

// CSVTracer writes the translations as CSV rows.
type CSVTracer struct {
	w       *csv.Writer
	closer  io.Closer
	seq     uint64
	pending int

	bufferSize int
}

// NewCSVTracer creates a tracer that writes into w. The header is written
// immediately.
func NewCSVTracer(w io.Writer) *CSVTracer {
	t := &CSVTracer{
		w:          csv.NewWriter(w),
		bufferSize: 1000,
	}

	_ = t.w.Write(csvHeader)

	return t
}

// NewCSVTraceFile creates path.csv and traces into it. An empty path gets a
// unique file name. The file is flushed and closed when the program exits
// through atexit.
func NewCSVTraceFile(path string) (*CSVTracer, error) {
	if path == "" {
		path = "vmmgr_trace_" + xid.New().String()
	}

	filename := path + ".csv"
	_, err := os.Stat(filename)
	if err == nil {
		return nil, fmt.Errorf("file %s already exists", filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	t := NewCSVTracer(file)
	t.closer = file

	atexit.Register(func() {
		_ = t.Close()
	})

	return t, nil
}

// TraceTranslation writes a row.
func (t *CSVTracer) TraceTranslation(translation mmu.Translation) {
	t.seq++

	_ = t.w.Write([]string{
		strconv.FormatUint(t.seq, 10),
		strconv.Itoa(int(translation.Logical)),
		strconv.Itoa(int(translation.Page)),
		strconv.Itoa(int(translation.Offset)),
		strconv.Itoa(int(translation.Frame)),
		strconv.FormatUint(uint64(translation.Physical), 10),
		strconv.Itoa(int(translation.Value)),
		translation.Kind.String(),
	})

	t.pending++
	if t.pending >= t.bufferSize {
		t.Flush()
	}
}

// Flush writes the buffered rows.
func (t *CSVTracer) Flush() {
	t.w.Flush()
	t.pending = 0
}

// Close flushes the rows and closes the underlying file, if any.
func (t *CSVTracer) Close() error {
	t.Flush()

	if err := t.w.Error(); err != nil {
		return err
	}

	if t.closer == nil {
		return nil
	}

	err := t.closer.Close()
	t.closer = nil

	return err
}

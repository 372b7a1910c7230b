package tracing

import (
	"github.com/sarchlab/vmmgr/datarecording"
	"github.com/sarchlab/vmmgr/mem/vm/mmu"
	"github.com/sarchlab/vmmgr/sim"
)

const translationTable = "translations"

// translationEntry represents a translation in the database
type translationEntry struct {
	RunID    string
	Seq      uint64
	Logical  uint16
	Page     uint8
	Offset   uint8
	Frame    uint8
	Physical uint32
	Value    int8
	Kind     string
}

// DBTracer stores translations through a DataRecorder.
type DBTracer struct {
	recorder datarecording.DataRecorder
	runID    string
	seq      uint64
	err      error
}

// NewDBTracer creates the translation table and returns a tracer that fills
// it. The run ID distinguishes the rows of different runs sharing a database.
func NewDBTracer(
	recorder datarecording.DataRecorder,
	ids sim.IDGenerator,
) (*DBTracer, error) {
	err := recorder.CreateTable(translationTable, translationEntry{})
	if err != nil {
		return nil, err
	}

	t := &DBTracer{
		recorder: recorder,
		runID:    ids.Generate(),
	}

	return t, nil
}

// RunID returns the ID stored with every row.
func (t *DBTracer) RunID() string {
	return t.runID
}

// TraceTranslation buffers a row.
func (t *DBTracer) TraceTranslation(translation mmu.Translation) {
	if t.err != nil {
		return
	}

	t.seq++

	t.err = t.recorder.InsertData(translationTable, translationEntry{
		RunID:    t.runID,
		Seq:      t.seq,
		Logical:  uint16(translation.Logical),
		Page:     uint8(translation.Page),
		Offset:   uint8(translation.Offset),
		Frame:    uint8(translation.Frame),
		Physical: translation.Physical,
		Value:    translation.Value,
		Kind:     translation.Kind.String(),
	})
}

// Err returns the first error met while recording.
func (t *DBTracer) Err() error {
	return t.err
}

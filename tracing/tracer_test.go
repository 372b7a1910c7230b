package tracing

import (
	"bytes"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vmmgr/datarecording"
	"github.com/sarchlab/vmmgr/mem/vm/mmu"
	"github.com/sarchlab/vmmgr/mem/vm/tlb"
	"github.com/sarchlab/vmmgr/sim"
)

var sampleTranslation = mmu.Translation{
	Logical:  0x1234,
	Page:     0x12,
	Offset:   0x34,
	Frame:    2,
	Physical: 2*256 + 0x34,
	Value:    -5,
	Kind:     mmu.PageTableHit,
}

var _ = Describe("TranslationHook", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		hook     *TranslationHook
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)
		hook = NewTranslationHook(tracer)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should forward translations", func() {
		tracer.EXPECT().TraceTranslation(sampleTranslation)

		hook.Func(sim.HookCtx{
			Pos:  mmu.HookPosTranslationDone,
			Item: sampleTranslation,
		})
	})

	It("should ignore other hook positions", func() {
		hook.Func(sim.HookCtx{
			Pos:  tlb.HookPosEvict,
			Item: tlb.Entry{},
		})
	})
})

var _ = Describe("TextTracer", func() {
	It("should print the record of a translation", func() {
		buf := new(bytes.Buffer)
		tracer := NewTextTracer(buf)

		tracer.TraceTranslation(sampleTranslation)

		Expect(buf.String()).To(Equal(
			"\nLogical address being translated: 4660\n" +
				"Corresponding physical address: 564\n" +
				"Signed byte value at this physical address: '-5'\n"))
		Expect(tracer.Err()).NotTo(HaveOccurred())
	})
})

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

var _ = Describe("TextTracer on a failing writer", func() {
	It("should keep the first error", func() {
		tracer := NewTextTracer(failingWriter{})

		tracer.TraceTranslation(sampleTranslation)
		tracer.TraceTranslation(sampleTranslation)

		Expect(tracer.Err()).To(MatchError("disk full"))
	})
})

var _ = Describe("CSVTracer", func() {
	It("should write a header and one row per translation", func() {
		buf := new(bytes.Buffer)
		tracer := NewCSVTracer(buf)

		tracer.TraceTranslation(sampleTranslation)
		Expect(tracer.Close()).To(Succeed())

		Expect(buf.String()).To(Equal(
			"seq,logical,page,offset,frame,physical,value,kind\n" +
				"1,4660,18,52,2,564,-5,page-table-hit\n"))
	})

	It("should create trace files", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")

		tracer, err := NewCSVTraceFile(path)
		Expect(err).NotTo(HaveOccurred())
		tracer.TraceTranslation(sampleTranslation)
		Expect(tracer.Close()).To(Succeed())

		content, err := os.ReadFile(path + ".csv")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(ContainSubstring("1,4660,18,52,2,564,-5"))

		_, err = NewCSVTraceFile(path)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl *gomock.Controller
		recorder *MockDataRecorder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockDataRecorder(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should create the table and insert rows", func() {
		recorder.EXPECT().CreateTable("translations", translationEntry{})
		recorder.EXPECT().InsertData("translations", translationEntry{
			RunID:    "1",
			Seq:      1,
			Logical:  0x1234,
			Page:     0x12,
			Offset:   0x34,
			Frame:    2,
			Physical: 564,
			Value:    -5,
			Kind:     "page-table-hit",
		})

		tracer, err := NewDBTracer(recorder, sim.NewSequentialIDGenerator())
		Expect(err).NotTo(HaveOccurred())
		Expect(tracer.RunID()).To(Equal("1"))

		tracer.TraceTranslation(sampleTranslation)

		Expect(tracer.Err()).NotTo(HaveOccurred())
	})

	It("should stop recording after an error", func() {
		recorder.EXPECT().CreateTable("translations", gomock.Any())
		recorder.EXPECT().
			InsertData("translations", gomock.Any()).
			Return(errors.New("db gone"))

		tracer, err := NewDBTracer(recorder, sim.NewSequentialIDGenerator())
		Expect(err).NotTo(HaveOccurred())

		tracer.TraceTranslation(sampleTranslation)
		tracer.TraceTranslation(sampleTranslation)

		Expect(tracer.Err()).To(MatchError("db gone"))
	})

	It("should report table creation failures", func() {
		recorder.EXPECT().
			CreateTable("translations", gomock.Any()).
			Return(errors.New("read only"))

		_, err := NewDBTracer(recorder, sim.NewSequentialIDGenerator())

		Expect(err).To(MatchError("read only"))
	})
})

var _ = Describe("DBTracer on a shared database", func() {
	It("should keep the rows of every run", func() {
		path := filepath.Join(GinkgoT().TempDir(), "shared.sqlite3")

		record := func() string {
			db, err := sql.Open("sqlite3", path)
			Expect(err).NotTo(HaveOccurred())

			recorder := datarecording.NewWithDB(db)
			tracer, err := NewDBTracer(recorder, sim.NewUniqueIDGenerator())
			Expect(err).NotTo(HaveOccurred())

			tracer.TraceTranslation(sampleTranslation)
			Expect(tracer.Err()).NotTo(HaveOccurred())
			Expect(recorder.Close()).To(Succeed())

			return tracer.RunID()
		}

		first := record()
		second := record()
		Expect(first).NotTo(Equal(second))

		db, err := sql.Open("sqlite3", path)
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		var runs, rows int
		Expect(db.QueryRow(
			"SELECT COUNT(DISTINCT RunID), COUNT(*) FROM translations",
		).Scan(&runs, &rows)).To(Succeed())
		Expect(runs).To(Equal(2))
		Expect(rows).To(Equal(2))
	})
})

var _ = Describe("CollectTracer", func() {
	It("should keep translations in order", func() {
		tracer := NewCollectTracer()

		tracer.TraceTranslation(sampleTranslation)
		tracer.TraceTranslation(mmu.Translation{Logical: 1})

		Expect(tracer.Translations).To(HaveLen(2))
		Expect(tracer.Translations[1].Logical).To(BeEquivalentTo(1))
	})
})

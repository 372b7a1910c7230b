package simulation

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmmgr/mem/backingstore"
	"github.com/sarchlab/vmmgr/mem/vm"
	"github.com/sarchlab/vmmgr/mem/vm/mmu"
	"github.com/sarchlab/vmmgr/tracing"
)

func backingImage() []byte {
	image := make([]byte, vm.NumPages*vm.PageSize)
	for i := range image {
		image[i] = byte(i * 7)
	}

	return image
}

var _ = Describe("ParseAddress", func() {
	DescribeTable("valid lines",
		func(line string, expected vm.LogicalAddress) {
			addr, err := ParseAddress(line)

			Expect(err).NotTo(HaveOccurred())
			Expect(addr).To(Equal(expected))
		},
		Entry("plain", "16916", vm.LogicalAddress(16916)),
		Entry("padded", "  62493 \r", vm.LogicalAddress(62493)),
		Entry("wider than 16 bits", "65536", vm.LogicalAddress(0)),
		Entry("negative", "-2", vm.LogicalAddress(0xFFFE)),
	)

	It("should reject non numbers", func() {
		_, err := ParseAddress("0x12")

		Expect(err).To(MatchError(ErrMalformedAddress))
	})
})

var _ = Describe("Runner", func() {
	var (
		image     []byte
		collector *tracing.CollectTracer
		runner    *Runner
	)

	BeforeEach(func() {
		image = backingImage()
		collector = tracing.NewCollectTracer()

		m := mmu.MakeBuilder().
			WithBackingStore(backingstore.NewReaderStore(bytes.NewReader(image))).
			Build("MMU")

		runner = MakeBuilder().
			WithMMU(m).
			WithTracer(collector).
			Build()
	})

	It("should panic without an MMU", func() {
		Expect(func() { MakeBuilder().Build() }).To(Panic())
	})

	It("should translate a fresh address 0 with a page fault", func() {
		summary, err := runner.Run(context.Background(), strings.NewReader("0\n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Stats.NumPageFaults).To(Equal(uint64(1)))
		Expect(collector.Translations).To(HaveLen(1))

		t := collector.Translations[0]
		Expect(t.Physical).To(Equal(uint32(0)))
		Expect(t.Value).To(Equal(int8(image[0])))
		Expect(t.Kind).To(Equal(mmu.PageFault))
	})

	It("should hit the TLB on a repeated address", func() {
		summary, err := runner.Run(context.Background(),
			strings.NewReader("0\n0\n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Stats.NumTLBHits).To(Equal(uint64(1)))
		Expect(summary.Stats.NumPageFaults).To(Equal(uint64(1)))
		Expect(summary.TLBHitRate).To(BeNumerically("~", 50.0, 1e-9))
		Expect(summary.PageFaultRate).To(BeNumerically("~", 50.0, 1e-9))
	})

	It("should skip blank lines", func() {
		summary, err := runner.Run(context.Background(),
			strings.NewReader("1\n\n  \n257\n"))

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Stats.NumAddresses).To(Equal(uint64(2)))
	})

	It("should stop at a malformed line", func() {
		summary, err := runner.Run(context.Background(),
			strings.NewReader("1\nabc\n2\n"))

		Expect(err).To(MatchError(ErrMalformedAddress))
		Expect(err.Error()).To(ContainSubstring("line 2"))
		Expect(summary.Stats.NumAddresses).To(Equal(uint64(1)))
	})

	It("should stop when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := runner.Run(ctx, strings.NewReader("1\n2\n"))

		Expect(err).To(MatchError(context.Canceled))
	})

	It("should report zero rates for an empty input", func() {
		summary, err := runner.Run(context.Background(), strings.NewReader(""))

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.PageFaultRate).To(Equal(0.0))
		Expect(summary.TLBHitRate).To(Equal(0.0))
	})

	It("should read addresses from a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "addresses.txt")
		Expect(os.WriteFile(path, []byte("1\n2\n513\n"), 0o644)).To(Succeed())

		summary, err := runner.RunFile(context.Background(), path)

		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Stats.NumAddresses).To(Equal(uint64(3)))
		Expect(summary.Stats.NumPageFaults).To(Equal(uint64(2)))
		Expect(summary.Stats.NumTLBHits).To(Equal(uint64(1)))
	})

	It("should report a missing input file", func() {
		_, err := runner.RunFile(context.Background(),
			filepath.Join(GinkgoT().TempDir(), "missing.txt"))

		Expect(err).To(MatchError(ErrInputUnreadable))
	})

	It("should report a missing backing store on the first fault", func() {
		m := mmu.MakeBuilder().
			WithBackingStore(backingstore.NewFileStore(
				filepath.Join(GinkgoT().TempDir(), "missing.bin"))).
			Build("MMU")
		runner = MakeBuilder().WithMMU(m).Build()

		_, err := runner.Run(context.Background(), strings.NewReader("5\n"))

		Expect(err).To(MatchError(backingstore.ErrStoreUnreadable))
	})
})

var _ = Describe("Summary", func() {
	It("should print the rates", func() {
		buf := new(bytes.Buffer)
		summary := NewSummary(mmu.Stats{
			NumAddresses:  10,
			NumPageFaults: 6,
			NumTLBHits:    3,
		})

		Expect(PrintSummary(buf, summary)).To(Succeed())

		Expect(buf.String()).To(Equal(
			"\nPage-fault rate: 60.000000%\nTLB hit rate: 30.000000%\n"))
	})
})

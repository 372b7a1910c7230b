package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sarchlab/vmmgr/config"
	"github.com/sarchlab/vmmgr/datarecording"
	"github.com/sarchlab/vmmgr/mem/backingstore"
	"github.com/sarchlab/vmmgr/mem/vm/mmu"
	"github.com/sarchlab/vmmgr/sim"
	"github.com/sarchlab/vmmgr/simulation"
	"github.com/sarchlab/vmmgr/tracing"
)

type options struct {
	envFile      string
	backingStore string
	trace        string
	traceFile    string
	traceDB      string
	logLevel     string
	runID        string
	dumpTLB      bool
}

func (o *options) addFlags(c *cobra.Command) {
	flags := c.Flags()
	flags.StringVar(&o.envFile, "env-file", ".env",
		"File with VMMGR_* settings, ignored if missing.")
	flags.StringVar(&o.backingStore, "backing-store", "",
		"Path of the backing store (default BACKING_STORE.bin).")
	flags.StringVar(&o.trace, "trace", "",
		"Per-address trace: text, csv or none (default text).")
	flags.StringVar(&o.traceFile, "trace-file", "",
		"Write the csv trace into this file (without extension) instead of stdout.")
	flags.StringVar(&o.traceDB, "trace-db", "",
		"Record translations into a SQLite file (without extension) or a mysql:// DSN.")
	flags.StringVar(&o.logLevel, "log-level", "",
		"DEBUG, INFO, WARN or ERROR (default INFO).")
	flags.StringVar(&o.runID, "run-id", "",
		"Run ID scheme of --trace-db rows: unique or sequential (default unique).")
	flags.BoolVar(&o.dumpTLB, "dump-tlb", false,
		"Print the TLB entries after the run.")
}

// resolveConfig overrides the loaded configuration with the flags that are
// set on the command line.
func (o *options) resolveConfig(c *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return cfg, err
	}

	flags := c.Flags()
	if flags.Changed("backing-store") {
		cfg.BackingStore = o.backingStore
	}
	if flags.Changed("trace") {
		cfg.Trace = o.trace
	}
	if flags.Changed("trace-file") {
		cfg.TraceFile = o.traceFile
	}
	if flags.Changed("trace-db") {
		cfg.TraceDB = o.traceDB
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("run-id") {
		cfg.RunID = o.runID
	}

	return cfg, cfg.Validate()
}

type errTracer interface {
	tracing.Tracer
	Err() error
}

func run(
	c *cobra.Command,
	o *options,
	addressFile string,
	stdout, stderr io.Writer,
) error {
	cfg, err := o.resolveConfig(c)
	if err != nil {
		return err
	}

	logger := config.InitLogger(stderr, cfg.LogLevel)

	store := backingstore.NewFileStore(cfg.BackingStore)
	defer store.Close()

	m := mmu.MakeBuilder().
		WithBackingStore(store).
		WithLogger(logger).
		Build("MMU")
	m.AcceptHook(sim.NewLogHook(logger))
	m.TLB().AcceptHook(sim.NewLogHook(logger))

	builder := simulation.MakeBuilder().WithMMU(m)

	var (
		checked   []errTracer
		csvTracer *tracing.CSVTracer
	)

	switch cfg.Trace {
	case config.TraceText:
		t := tracing.NewTextTracer(stdout)
		checked = append(checked, t)
		builder = builder.WithTracer(t)
	case config.TraceCSV:
		csvTracer, err = newCSVTracer(cfg.TraceFile, stdout)
		if err != nil {
			return err
		}
		defer csvTracer.Close()
		builder = builder.WithTracer(csvTracer)
	}

	if cfg.TraceDB != "" {
		recorder, err := datarecording.Open(cfg.TraceDB)
		if err != nil {
			return err
		}
		defer recorder.Close()

		t, err := tracing.NewDBTracer(recorder, runIDGenerator(cfg.RunID))
		if err != nil {
			return err
		}

		logger.Info("recording translations", "run_id", t.RunID())
		checked = append(checked, t)
		builder = builder.WithTracer(t)
	}

	logger.Debug("starting run",
		"addresses", addressFile,
		"backing_store", cfg.BackingStore,
		"trace", cfg.Trace,
	)

	summary, err := builder.Build().RunFile(c.Context(), addressFile)
	if err != nil {
		return err
	}

	if csvTracer != nil {
		csvTracer.Flush()
	}

	for _, t := range checked {
		if err := t.Err(); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}

	// Keep stdout pure CSV when the rows are written there.
	report := stdout
	if csvTracer != nil && cfg.TraceFile == "" {
		report = stderr
	}

	if err := simulation.PrintSummary(report, summary); err != nil {
		return err
	}

	if o.dumpTLB {
		return dumpTLB(report, m)
	}

	return nil
}

func runIDGenerator(scheme string) sim.IDGenerator {
	if scheme == config.RunIDSequential {
		return sim.NewSequentialIDGenerator()
	}

	return sim.NewUniqueIDGenerator()
}

func newCSVTracer(path string, stdout io.Writer) (*tracing.CSVTracer, error) {
	if path == "" {
		return tracing.NewCSVTracer(stdout), nil
	}

	return tracing.NewCSVTraceFile(path)
}

func dumpTLB(w io.Writer, m *mmu.Comp) error {
	_, err := color.New(color.Bold).Fprintf(w, "\n%-6s%-6s%-6s%s\n",
		"slot", "page", "frame", "recency")
	if err != nil {
		return err
	}

	var errs []error
	for i, e := range m.TLB().Entries() {
		_, err := fmt.Fprintf(w, "%-6d%-6d%-6d%d\n",
			i, e.PageNumber, e.FrameNumber, e.Recency)
		errs = append(errs, err)
	}

	slog.Debug("tlb dumped", "entries", m.TLB().Len())

	return errors.Join(errs...)
}

// Package simulation feeds a stream of logical addresses to an MMU and reports
// how they were resolved.
package simulation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/vmmgr/mem/vm"
	"github.com/sarchlab/vmmgr/mem/vm/mmu"
)

var (
	// ErrInputUnreadable is returned when the address file cannot be read.
	ErrInputUnreadable = errors.New("input file cannot be read")

	// ErrMalformedAddress is returned for a line that is not a decimal
	// integer.
	ErrMalformedAddress = errors.New("malformed address")
)

// A Runner translates every address of an input with one MMU.
type Runner struct {
	mmu *mmu.Comp
}

// MMU returns the MMU used by the runner.
func (r *Runner) MMU() *mmu.Comp {
	return r.mmu
}

// ParseAddress parses one line of input. Only the low 16 bits of the value
// are kept.
func ParseAddress(line string) (vm.LogicalAddress, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", line, ErrMalformedAddress)
	}

	return vm.LogicalAddressFromInt(v), nil
}

// RunFile translates the addresses listed in the file at path.
func (r *Runner) RunFile(ctx context.Context, path string) (Summary, error) {
	file, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrInputUnreadable, err)
	}
	defer file.Close()

	return r.Run(ctx, file)
}

// Run translates one decimal address per line of input. Blank lines are
// skipped. The first error stops the run.
func (r *Runner) Run(ctx context.Context, input io.Reader) (Summary, error) {
	scanner := bufio.NewScanner(input)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++

		if err := ctx.Err(); err != nil {
			return r.summary(), err
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		addr, err := ParseAddress(line)
		if err != nil {
			return r.summary(), fmt.Errorf("line %d: %w", lineNumber, err)
		}

		if _, err := r.mmu.Translate(addr); err != nil {
			return r.summary(), fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return r.summary(), fmt.Errorf("%w: %w", ErrInputUnreadable, err)
	}

	return r.summary(), nil
}

func (r *Runner) summary() Summary {
	return NewSummary(r.mmu.Stats())
}

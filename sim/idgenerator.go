package sim

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// NewSequentialIDGenerator returns a generator that produces "1", "2", ...
// Database traces use it with --run-id sequential so that two runs over the
// same input store identical rows.
func NewSequentialIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewUniqueIDGenerator returns a generator that produces globally unique IDs.
func NewUniqueIDGenerator() IDGenerator {
	return uniqueIDGenerator{}
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}

type uniqueIDGenerator struct {
}

func (g uniqueIDGenerator) Generate() string {
	return xid.New().String()
}

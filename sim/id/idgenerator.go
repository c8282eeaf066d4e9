// Package id generates unique identifiers for events, requests and tasks.
package id

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs.
type IDGenerator interface {
	Generate() string
}

var (
	generatorLock         sync.Mutex
	generatorInstantiated bool
	generator             IDGenerator
)

// NewIDGenerator returns a fresh sequential generator. The first ID it emits
// is "1".
func NewIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// UseParallelIDGenerator makes Generate return xid based IDs. The IDs are not
// deterministic anymore. It must be called before the first ID is generated.
func UseParallelIDGenerator() {
	generatorLock.Lock()
	defer generatorLock.Unlock()

	if generatorInstantiated {
		log.Panic("cannot change id generator type after using it")
	}

	generator = parallelIDGenerator{}
	generatorInstantiated = true
}

// Generate returns an ID from the process-wide generator. A sequential
// generator is used unless UseParallelIDGenerator was called first.
func Generate() string {
	return getGenerator().Generate()
}

func getGenerator() IDGenerator {
	generatorLock.Lock()
	defer generatorLock.Unlock()

	if !generatorInstantiated {
		generator = &sequentialIDGenerator{}
		generatorInstantiated = true
	}

	return generator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)

	return strconv.FormatUint(idNumber, 10)
}

type parallelIDGenerator struct{}

func (g parallelIDGenerator) Generate() string {
	return xid.New().String()
}

package quickfit

import (
	"fmt"
	"sync"

	"github.com/garethgeorge/memsim/internal/allocerr"
	"github.com/google/btree"
)

const DefaultPopulation = 5

// DefaultClasses returns the reference size classes in KB.
func DefaultClasses() []int {
	return []int{50, 100, 200, 300, 500}
}

type options struct {
	strictRelease bool
}

type Option = func(*options)

// WithStrictRelease makes Deallocate reject a size class that has no
// outstanding allocations instead of growing its free list.
func WithStrictRelease() func(*options) {
	return func(o *options) {
		o.strictRelease = true
	}
}

type sizeClass struct {
	capacity    int
	free        int
	outstanding int
}

// Placement describes which size class satisfied a request.
type Placement struct {
	Capacity int
	Size     int
}

// ClassRow is a read-only view of one size class.
type ClassRow struct {
	Capacity    int
	FreeCount   int
	Outstanding int
}

type Stats struct {
	Classes             int
	FreeTokens          int
	OutstandingTokens   int
	FreeCapacity        int
	OutstandingCapacity int
	// InflatedClasses counts classes whose free list grew past the initial
	// population through releases that had no matching allocation.
	InflatedClasses int
}

// Allocator keeps one free list per fixed size class and satisfies each
// request from the smallest class that is large enough and not empty.
// Only token counts are modeled; tokens of one class are interchangeable.
// It is safe for concurrent use; every operation holds a single lock.
type Allocator struct {
	mu            sync.Mutex
	population    int
	strictRelease bool
	// classes is ordered by capacity.
	classes *btree.BTreeG[*sizeClass]
}

func New(capacities []int, population int, opts ...Option) (*Allocator, error) {
	if len(capacities) == 0 {
		return nil, fmt.Errorf("quick-fit: at least one size class is required")
	}
	if population < 0 {
		return nil, fmt.Errorf("quick-fit: negative initial population %d", population)
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	a := &Allocator{
		population:    population,
		strictRelease: o.strictRelease,
		classes:       btree.NewG[*sizeClass](32, func(x, y *sizeClass) bool { return x.capacity < y.capacity }),
	}
	for _, c := range capacities {
		if c <= 0 {
			return nil, fmt.Errorf("quick-fit: size class %d is not positive", c)
		}
		if _, dup := a.classes.ReplaceOrInsert(&sizeClass{capacity: c}); dup {
			return nil, fmt.Errorf("quick-fit: duplicate size class %d", c)
		}
	}
	a.resetLocked()
	return a, nil
}

// NewDefault returns an allocator over DefaultClasses with DefaultPopulation
// tokens per class.
func NewDefault(opts ...Option) *Allocator {
	a, err := New(DefaultClasses(), DefaultPopulation, opts...)
	if err != nil {
		panic("quick-fit: invalid default classes: " + err.Error())
	}
	return a
}

func (a *Allocator) resetLocked() {
	a.classes.Ascend(func(c *sizeClass) bool {
		c.free = a.population
		c.outstanding = 0
		return true
	})
}

// Population reports the number of tokens each class holds after Reset.
func (a *Allocator) Population() int {
	return a.population
}

// StrictRelease reports whether releases are checked against outstanding
// allocations.
func (a *Allocator) StrictRelease() bool {
	return a.strictRelease
}

// Allocate takes one token from the smallest class whose capacity is at least
// size and whose free list is not empty. State is unchanged on error.
func (a *Allocator) Allocate(size int) (Placement, error) {
	if err := allocerr.ValidateRequestSize(size); err != nil {
		return Placement{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var found *sizeClass
	a.classes.AscendGreaterOrEqual(&sizeClass{capacity: size}, func(c *sizeClass) bool {
		if c.free > 0 {
			found = c
			return false // stop
		}
		return true
	})
	if found == nil {
		return Placement{}, allocerr.New(allocerr.NoSuitableBlock, size)
	}

	found.free--
	found.outstanding++
	return Placement{Capacity: found.capacity, Size: size}, nil
}

// Deallocate returns one token to the class whose capacity equals size.
//
// By default the token is added unconditionally, so a class can end up with
// more free tokens than its initial population. With WithStrictRelease the
// call fails unless a token of that class is outstanding.
func (a *Allocator) Deallocate(size int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.classes.Get(&sizeClass{capacity: size})
	if !ok {
		return allocerr.New(allocerr.UnknownBlockSize, size)
	}
	if c.outstanding == 0 {
		if a.strictRelease {
			return allocerr.New(allocerr.NothingOutstanding, size)
		}
	} else {
		c.outstanding--
	}
	c.free++
	return nil
}

// Reset restores every class to the initial population.
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
}

// Snapshot returns one row per size class in ascending capacity order.
func (a *Allocator) Snapshot() []ClassRow {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows := make([]ClassRow, 0, a.classes.Len())
	a.classes.Ascend(func(c *sizeClass) bool {
		rows = append(rows, ClassRow{Capacity: c.capacity, FreeCount: c.free, Outstanding: c.outstanding})
		return true
	})
	return rows
}

func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Stats{Classes: a.classes.Len()}
	a.classes.Ascend(func(c *sizeClass) bool {
		s.FreeTokens += c.free
		s.OutstandingTokens += c.outstanding
		s.FreeCapacity += c.free * c.capacity
		s.OutstandingCapacity += c.outstanding * c.capacity
		if c.free+c.outstanding > a.population {
			s.InflatedClasses++
		}
		return true
	})
	return s
}

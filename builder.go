package thetadup

import (
	"fmt"

	"github.com/sawmills/thetadup/internal/obslog"
)

// ResizeFactor controls how aggressively an update sketch's table grows on
// resize: the table length multiplies by 2^ResizeFactor, up to twice the
// nominal size.
type ResizeFactor uint8

// The four resize factors the table may grow by: x1, x2, x4, x8.
const (
	ResizeX1 ResizeFactor = iota
	ResizeX2
	ResizeX4
	ResizeX8
)

// MinLgK is the smallest nominal size exponent a Builder accepts.
const MinLgK uint8 = 5

// DefaultLgK is the nominal size exponent used when a Builder does not set
// one explicitly: a nominal retained-entry target of 2^12 = 4096.
const DefaultLgK uint8 = 12

// DefaultResizeFactor is the resize factor used when a Builder does not set
// one explicitly.
const DefaultResizeFactor = ResizeX8

// Builder configures and constructs an *UpdateSketch. Zero value is not
// usable directly; use NewBuilder.
type Builder struct {
	lgK    uint8
	rf     ResizeFactor
	p      float32
	seed   uint64
	logger *obslog.Logger
}

// NewBuilder returns a Builder with the package defaults: lg_k=12,
// resize factor x8, p=1.0, seed=DefaultSeed.
func NewBuilder() *Builder {
	return &Builder{
		lgK:  DefaultLgK,
		rf:   DefaultResizeFactor,
		p:    1.0,
		seed: DefaultSeed,
	}
}

// WithLgK sets the base-2 logarithm of the nominal number of retained
// entries. Validated at Build(); must be >= MinLgK.
func (b *Builder) WithLgK(lgK uint8) *Builder {
	b.lgK = lgK
	return b
}

// WithResizeFactor sets the table growth ratio used on resize.
func (b *Builder) WithResizeFactor(rf ResizeFactor) *Builder {
	b.rf = rf
	return b
}

// WithP sets the initial sampling probability, which sets the sketch's
// starting theta to p * MaxTheta. Validated at Build(); must be in (0,1].
func (b *Builder) WithP(p float32) *Builder {
	b.p = p
	return b
}

// WithSeed sets the hash seed. Sketches built with different seeds cannot
// be merged by the set operations.
func (b *Builder) WithSeed(seed uint64) *Builder {
	b.seed = seed
	return b
}

// WithLogger attaches a structured logger that records resize, rebuild,
// and trim events. Omit it (or pass nil) for silent operation.
func (b *Builder) WithLogger(logger *obslog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the accumulated options and constructs the update sketch.
func (b *Builder) Build() (*UpdateSketch, error) {
	if b.lgK < MinLgK {
		return nil, fmt.Errorf("%w: lg_k must be >= %d, got %d", ErrInvalidArgument, MinLgK, b.lgK)
	}
	if b.p <= 0 || b.p > 1 {
		return nil, fmt.Errorf("%w: p must be in (0, 1], got %v", ErrInvalidArgument, b.p)
	}

	logger := b.logger
	if logger == nil {
		logger = obslog.Nop()
	}

	lgCurSize := startingSubMultiple(b.lgK+1, MinLgK, uint8(b.rf))
	s := &UpdateSketch{
		lgCurSize: lgCurSize,
		lgNomSize: b.lgK,
		table:     make([]entry, uint32(1)<<lgCurSize),
		rf:        b.rf,
		p:         b.p,
		seed:      b.seed,
		isEmpty:   true,
		theta:     MaxTheta,
		logger:    logger,
	}
	s.capacity = getCapacity(s.lgCurSize, s.lgNomSize)
	if b.p < 1 {
		s.theta = uint64(float64(s.theta) * float64(b.p))
	}
	return s, nil
}

// startingSubMultiple returns the smallest value >= lgMin that equals
// lgTgt - k*lgRf for some k >= 0, the initial table size a builder picks so
// that repeated resizes by lgRf land exactly on lgTgt. It returns lgMin when
// lgTgt <= lgMin, and lgTgt itself when lgRf is 0.
func startingSubMultiple(lgTgt, lgMin, lgRf uint8) uint8 {
	if lgTgt <= lgMin {
		return lgMin
	}
	if lgRf == 0 {
		return lgTgt
	}
	return ((lgTgt-lgMin)%lgRf + lgMin)
}

package fontatlas

import (
	"github.com/gogpu/fontatlas/atlas"
	"github.com/gogpu/fontatlas/internal/gamma"
	"github.com/gogpu/fontatlas/sched"
)

// DefaultFallbackRunes is the preference order of fallback glyphs. The
// first one a font holds becomes its fallback.
var DefaultFallbackRunes = []rune{'〓', '?', '!', '-', ' '}

// AtlasBuilder owns the atlas and drives the two passes of a build: it
// calls h.Reserve, rasterizes its pages, then calls h.Composite.
// *atlas.Packer implements it.
type AtlasBuilder interface {
	Build(h atlas.Hooks) error
}

// Option configures a Manager during creation.
//
// Example:
//
//	// Default: in-process packer, own scheduler goroutine, gamma 1.4
//	m := fontatlas.New(cache)
//
//	// Host-driven rebuilds at display gamma
//	var q sched.Queue
//	m := fontatlas.New(cache, fontatlas.WithScheduler(&q), fontatlas.WithGamma(2.2))
type Option func(*managerOptions)

// managerOptions holds optional configuration for Manager creation.
type managerOptions struct {
	gamma     float32
	scheduler sched.Scheduler
	fallback  []rune
	builder   AtlasBuilder
}

// defaultManagerOptions returns the default manager options.
func defaultManagerOptions() managerOptions {
	return managerOptions{
		gamma:     gamma.Baseline,
		scheduler: nil, // an owned sched.Loop is started if nil
		fallback:  DefaultFallbackRunes,
		builder:   nil, // atlas.NewPackerDefault if nil
	}
}

// WithGamma sets the display gamma composited alpha is corrected to.
// Values within a small epsilon of 1.4 leave the alpha untouched.
func WithGamma(g float32) Option {
	return func(o *managerOptions) {
		if g > 0 {
			o.gamma = g
		}
	}
}

// WithScheduler sets the scheduler rebuilds are deferred to. The Manager does
// not close a scheduler it was given.
func WithScheduler(s sched.Scheduler) Option {
	return func(o *managerOptions) {
		o.scheduler = s
	}
}

// WithFallbackRunes replaces the fallback preference list.
func WithFallbackRunes(runes ...rune) Option {
	return func(o *managerOptions) {
		o.fallback = append([]rune(nil), runes...)
	}
}

// WithBuilder sets the atlas builder.
func WithBuilder(b AtlasBuilder) Option {
	return func(o *managerOptions) {
		o.builder = b
	}
}

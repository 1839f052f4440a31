package fontatlas

import (
	"testing"

	"github.com/gogpu/fontatlas/atlas"
	"github.com/gogpu/fontatlas/internal/gamma"
	"github.com/gogpu/fontatlas/sched"
)

func TestDefaultManagerOptions(t *testing.T) {
	o := defaultManagerOptions()
	if o.gamma != gamma.Baseline {
		t.Errorf("gamma = %v, want %v", o.gamma, gamma.Baseline)
	}
	if o.scheduler != nil || o.builder != nil {
		t.Error("default scheduler and builder should be nil")
	}
	if len(o.fallback) != 5 || o.fallback[0] != '〓' || o.fallback[4] != ' ' {
		t.Errorf("fallback = %q", o.fallback)
	}
}

func TestOptions(t *testing.T) {
	q := &sched.Queue{}
	p := atlas.NewPackerDefault()
	runes := []rune{'x', 'y'}

	o := defaultManagerOptions()
	for _, opt := range []Option{
		WithGamma(2.2),
		WithScheduler(q),
		WithBuilder(p),
		WithFallbackRunes(runes...),
	} {
		opt(&o)
	}

	if o.gamma != 2.2 {
		t.Errorf("gamma = %v, want 2.2", o.gamma)
	}
	if o.scheduler != q {
		t.Error("WithScheduler not applied")
	}
	if o.builder != p {
		t.Error("WithBuilder not applied")
	}
	runes[0] = 'z'
	if o.fallback[0] != 'x' {
		t.Error("WithFallbackRunes kept a reference to the caller's slice")
	}
}

func TestWithGamma_IgnoresNonPositive(t *testing.T) {
	o := defaultManagerOptions()
	WithGamma(0)(&o)
	WithGamma(-1)(&o)
	if o.gamma != gamma.Baseline {
		t.Errorf("gamma = %v, want baseline", o.gamma)
	}
}

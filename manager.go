package fontatlas

import (
	"errors"
	"math"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gogpu/fontatlas/atlas"
	"github.com/gogpu/fontatlas/internal/gamma"
	"github.com/gogpu/fontatlas/registry"
	"github.com/gogpu/fontatlas/resource"
	"github.com/gogpu/fontatlas/sched"
)

// Manager maps requested styles to built font objects.
//
// Acquire and Handle methods are safe for concurrent use from any goroutine.
// All atlas and pixel work runs in Rebuild, which the scheduler invokes on
// its owner's turn.
type Manager struct {
	cache   *resource.Cache
	reg     *registry.Registry[Style]
	opts    managerOptions
	builder AtlasBuilder
	sched   sched.Scheduler
	ownLoop *sched.Loop
	gammas  *gamma.Cache

	// gamma holds the float32 bits of the display gamma.
	gamma atomic.Uint32

	// pending is set while a rebuild is scheduled but has not started.
	pending atomic.Bool
	closed  atomic.Bool

	fonts    atomic.Pointer[map[Style]atlas.Font]
	rebuilds atomic.Int64

	buildMu sync.Mutex
	warned  map[Style]struct{} // guarded by buildMu
}

// New creates a Manager over a loaded resource cache.
func New(cache *resource.Cache, opts ...Option) *Manager {
	o := defaultManagerOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		cache:   cache,
		opts:    o,
		builder: o.builder,
		sched:   o.scheduler,
		gammas:  gamma.NewCache(8),
		warned:  make(map[Style]struct{}),
	}
	if m.builder == nil {
		m.builder = atlas.NewPackerDefault()
	}
	if m.sched == nil {
		m.ownLoop = sched.NewLoop()
		m.sched = m.ownLoop
	}
	m.gamma.Store(math.Float32bits(o.gamma))
	m.reg = registry.New(m.styleAdded)
	empty := map[Style]atlas.Font{}
	m.fonts.Store(&empty)

	Logger().Info("fontatlas: manager ready",
		"families", len(cache.Families()),
		"textures", cache.TextureCount(),
		"gamma", o.gamma)
	return m
}

// Acquire registers one use of s and returns its handle. A style without a
// built font schedules a rebuild; Acquire never waits for it. Styles are
// keyed by their canonical form, see Style.Canonical.
func (m *Manager) Acquire(s Style) *Handle {
	return &Handle{m: m, h: m.reg.Acquire(s.Canonical())}
}

// Gamma returns the display gamma composited alpha is corrected to.
func (m *Manager) Gamma() float32 {
	return math.Float32frombits(m.gamma.Load())
}

// SetGamma changes the display gamma and schedules a rebuild when it
// differs from the current one. Non-positive and NaN values are ignored.
func (m *Manager) SetGamma(g float32) {
	if !(g > 0) || math.IsInf(float64(g), 0) {
		return
	}
	if m.gamma.Swap(math.Float32bits(g)) == math.Float32bits(g) {
		return
	}
	Logger().Info("fontatlas: gamma changed", "gamma", g)
	m.requestRebuild()
}

// styleAdded runs after a style gained its registry entry.
func (m *Manager) styleAdded(Style) {
	m.requestRebuild()
}

// requestRebuild schedules one rebuild unless one is already pending.
func (m *Manager) requestRebuild() {
	if m.closed.Load() {
		return
	}
	if m.pending.Swap(true) {
		return
	}
	m.sched.Schedule(m.scheduledRebuild)
}

func (m *Manager) scheduledRebuild() {
	// Requests arriving from here on schedule a new pass.
	m.pending.Store(false)
	_ = m.Rebuild()
}

// Rebuild runs a full build for the styles registered at call time and
// publishes the fonts that composited. It is normally called by the
// scheduler; hosts driving their own atlas may call it directly from the
// atlas owner.
func (m *Manager) Rebuild() error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	styles := m.reg.Keys()
	sort.Slice(styles, func(i, j int) bool { return styleLess(styles[i], styles[j]) })

	log := Logger()
	log.Debug("fontatlas: rebuild start", "styles", len(styles))

	var b *build
	for {
		b = newBuild(m, styles)
		err := m.builder.Build(b)
		if err == nil {
			break
		}
		// A full atlas drops its largest style and retries without it.
		var full *atlas.FullError
		drop, ok := b.largest()
		if !errors.As(err, &full) || !ok {
			log.Warn("fontatlas: rebuild failed", "err", err)
			return err
		}
		log.Warn("fontatlas: atlas full, style left unready", "style", drop.String(), "err", err)
		styles = slices.DeleteFunc(styles, func(s Style) bool { return s == drop })
	}

	ready := b.ready
	m.fonts.Store(&ready)
	n := m.rebuilds.Add(1)
	log.Debug("fontatlas: rebuild done", "build", n, "styles", len(styles), "ready", len(ready))
	return nil
}

// font returns the published font of s.
func (m *Manager) font(s Style) (atlas.Font, bool) {
	f, ok := (*m.fonts.Load())[s]
	return f, ok
}

// warnUnknown logs an unknown family once per style. Caller must hold
// buildMu.
func (m *Manager) warnUnknown(s Style) {
	if _, ok := m.warned[s]; ok {
		return
	}
	m.warned[s] = struct{}{}
	Logger().Warn("fontatlas: unknown family", "style", s.String())
}

// Stats is a snapshot of the Manager's state.
type Stats struct {
	// Rebuilds is the number of completed rebuilds.
	Rebuilds int64
	// ActiveStyles is the number of styles with a live use count.
	ActiveStyles int
	// ReadyFonts is the number of published fonts.
	ReadyFonts int
	// Pending reports a scheduled rebuild that has not started.
	Pending bool
}

// Stats returns current statistics.
func (m *Manager) Stats() Stats {
	return Stats{
		Rebuilds:     m.rebuilds.Load(),
		ActiveStyles: m.reg.Len(),
		ReadyFonts:   len(*m.fonts.Load()),
		Pending:      m.pending.Load(),
	}
}

// UseCount returns the live use count of s.
func (m *Manager) UseCount(s Style) int {
	return m.reg.Count(s)
}

// Close stops scheduling rebuilds and stops the scheduler goroutine the
// Manager started. Published fonts stay readable. Close is idempotent.
func (m *Manager) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.ownLoop != nil {
		m.ownLoop.Close()
	}
	return nil
}

// Handle holds one use of a style. Close releases it exactly once; a Handle
// dropped without Close is released when the garbage collector reclaims it.
type Handle struct {
	m *Manager
	h *registry.Handle[Style]
}

// Style returns the style the handle holds.
func (h *Handle) Style() Style {
	return h.h.Key()
}

// Font returns the built font of the style. It reports false until a
// rebuild has produced one, and forever for a style that cannot be built.
func (h *Handle) Font() (atlas.Font, bool) {
	if h.h.Closed() {
		return nil, false
	}
	return h.m.font(h.h.Key())
}

// Face returns the built font as a font.Face. It reports false when Font
// does or when the builder's fonts are not *atlas.PackedFont.
func (h *Handle) Face() (*Face, bool) {
	f, ok := h.Font()
	if !ok {
		return nil, false
	}
	pf, ok := f.(*atlas.PackedFont)
	if !ok {
		return nil, false
	}
	return NewFace(pf), true
}

// Close releases the handle's use. Later calls do nothing.
func (h *Handle) Close() error {
	h.h.Close()
	return nil
}

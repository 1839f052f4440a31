// Package fontatlas composites pre-rasterized bitmap game fonts into a
// shared glyph atlas.
//
// # Overview
//
// A [Manager] sits between three collaborators: a [resource.Cache] holding
// every font descriptor and texture sheet, an atlas builder that packs
// rectangles and owns the atlas pages, and a scheduler that runs rebuilds on
// the atlas owner's turn.
//
// Consumers request a [Style] with [Manager.Acquire]. The first request of a
// style schedules one rebuild; the rebuild reserves one rectangle per glyph
// for every active style, lets the builder rasterize its pages, then fills
// the pixels and rescales the metrics to the requested size.
//
// # Quick Start
//
//	cache, err := resource.Load(ctx, family.DefaultTable(), resource.NewFSSource(os.DirFS(root)))
//	if err != nil {
//	    return err
//	}
//	m := fontatlas.New(cache)
//	defer m.Close()
//
//	h := m.Acquire(fontatlas.Style{Family: family.Axis12, Size: 16})
//	defer h.Close()
//
//	// Later, once the rebuild has run:
//	if f, ok := h.Font(); ok {
//	    _ = f.GlyphCount()
//	}
//
// # Synthetic Styles
//
// Styles with a Weight above zero or a non-zero Skew have no authored
// bitmap. Their glyphs are synthesized from the regular bitmap: bold by
// stacking horizontally shifted copies, skew by shifting each row with
// linear interpolation between neighboring pixels. Overlapping copies merge
// with max, never with addition.
//
// # Gamma
//
// The sheets are authored for gamma 1.4. [WithGamma] re-targets the alpha of
// every composited glyph to another gamma.
//
// # Logging
//
// fontatlas is silent by default. Call [SetLogger] to receive rebuild
// diagnostics through log/slog.
package fontatlas

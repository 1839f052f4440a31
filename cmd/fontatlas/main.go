// Command fontatlas builds a glyph atlas from game font files and writes
// the atlas pages and a sample string as PNG.
//
// Usage:
//
//	fontatlas -root ./sqpack -family Axis12 -size 18 -weight 1 -text "Hello"
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/fontatlas"
	"github.com/gogpu/fontatlas/atlas"
	"github.com/gogpu/fontatlas/family"
	"github.com/gogpu/fontatlas/resource"
	"github.com/gogpu/fontatlas/sched"
)

func main() {
	var (
		root    = flag.String("root", ".", "directory holding common/font")
		name    = flag.String("family", "Axis12", "font family")
		size    = flag.Float64("size", 0, "target point size (0 = native)")
		weight  = flag.Float64("weight", 0, "synthetic bold in pixels")
		skew    = flag.Float64("skew", 0, "synthetic skew in pixels")
		gamma   = flag.Float64("gamma", 1.4, "display gamma")
		text    = flag.String("text", "The quick brown fox jumps over the lazy dog", "sample text")
		output  = flag.String("output", "out", "output directory")
		page    = flag.Int("page", 2048, "atlas page size")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		fontatlas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	fam, ok := family.Parse(*name)
	if !ok {
		log.Fatalf("Unknown family %q", *name)
	}
	files, ok := family.DefaultTable()[fam]
	if !ok {
		log.Fatalf("Family %v has no files", fam)
	}

	cache, err := resource.Load(context.Background(), family.Table{fam: files}, resource.NewFSSource(os.DirFS(*root)))
	if err != nil {
		log.Fatalf("Failed to load fonts: %v", err)
	}

	cfg := atlas.DefaultConfig()
	cfg.PageWidth, cfg.PageHeight = *page, *page
	packer, err := atlas.NewPacker(cfg)
	if err != nil {
		log.Fatalf("Invalid atlas config: %v", err)
	}

	var queue sched.Queue
	m := fontatlas.New(cache,
		fontatlas.WithBuilder(packer),
		fontatlas.WithScheduler(&queue),
		fontatlas.WithGamma(float32(*gamma)))
	defer m.Close()

	h := m.Acquire(fontatlas.Style{
		Family: fam,
		Size:   float32(*size),
		Weight: float32(*weight),
		Skew:   float32(*skew),
	})
	defer h.Close()
	queue.RunPending()

	face, ok := h.Face()
	if !ok {
		log.Fatalf("Style %v did not build", h.Style())
	}

	if err := os.MkdirAll(*output, 0o755); err != nil {
		log.Fatalf("Failed to create %s: %v", *output, err)
	}
	for i := 0; i < packer.PageCount(); i++ {
		img, err := packer.Page(i)
		if err != nil {
			log.Fatalf("Page %d: %v", i, err)
		}
		d := packer.PageDescriptor(i)
		path := filepath.Join(*output, fmt.Sprintf("page%d.png", i))
		if err := savePNG(path, img); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		log.Printf("%s: %dx%d %v, %.1f%% used\n", path, d.Size.Width, d.Size.Height, d.Format, packer.Utilization(i)*100)
	}

	// Glyph tables hold precomposed characters.
	sample := drawSample(face, norm.NFC.String(*text))
	path := filepath.Join(*output, "sample.png")
	if err := savePNG(path, sample); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Sample saved to %s (%dx%d)\n", path, sample.Bounds().Dx(), sample.Bounds().Dy())
}

// drawSample renders text in white on a dark background.
func drawSample(face font.Face, text string) *image.RGBA {
	const margin = 8
	m := face.Metrics()
	d := &font.Drawer{Face: face}
	w := d.MeasureString(text).Ceil() + 2*margin
	h := m.Height.Ceil() + 2*margin

	img := image.NewRGBA(image.Rect(0, 0, max(w, 1), h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 0x20, G: 0x24, B: 0x2C, A: 0xFF}), image.Point{}, draw.Src)

	d.Dst = img
	d.Src = image.White
	d.Dot = fixed.Point26_6{X: fixed.I(margin), Y: fixed.I(margin) + m.Ascent}
	d.DrawString(text)
	return img
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

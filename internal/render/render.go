// Package render draws GeoJSON objects into small preview images and encodes
// them as WebP.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/woozymasta/geojsontools/internal/config"
	"github.com/woozymasta/geojsontools/internal/geo"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Options control the preview canvas.
type Options struct {
	Width   int
	Height  int
	Padding int

	// Stroke is the line width in output pixels.
	Stroke float64
	// Supersample renders at N times the size and scales down.
	Supersample int
	Quality     float32

	Background color.RGBA
	Line       color.RGBA
	Fill       color.RGBA
	Point      color.RGBA
}

// MaxCanvasPixels bounds the supersampled canvas. Supersample is lowered
// until Width*Height*Supersample^2 fits, down to 1.
const MaxCanvasPixels = 2048 * 2048

// DefaultOptions returns a 512x512 canvas with a white background.
func DefaultOptions() Options {
	return Options{
		Width:       512,
		Height:      512,
		Padding:     16,
		Stroke:      2,
		Supersample: 2,
		Quality:     85,
		Background:  color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Line:        color.RGBA{R: 0x1f, G: 0x6f, B: 0xd0, A: 255},
		Fill:        color.RGBA{R: 0x1f, G: 0x6f, B: 0xd0, A: 0x40},
		Point:       color.RGBA{R: 0xd0, G: 0x30, B: 0x1f, A: 255},
	}
}

// FromConfig applies the render section of the config file on top of
// DefaultOptions.
func FromConfig(c config.Render) Options {
	o := DefaultOptions()
	if c.Width > 0 {
		o.Width = c.Width
	}
	if c.Height > 0 {
		o.Height = c.Height
	}
	if c.Stroke > 0 {
		o.Stroke = c.Stroke
	}
	if c.Quality > 0 {
		o.Quality = c.Quality
	}
	return o
}

func (o Options) normalize() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Padding < 0 || o.Padding*2 >= min(o.Width, o.Height) {
		o.Padding = 0
	}
	if o.Stroke <= 0 {
		o.Stroke = d.Stroke
	}
	if o.Supersample <= 0 {
		o.Supersample = 1
	}
	for o.Supersample > 1 && o.Width*o.Height*o.Supersample*o.Supersample > MaxCanvasPixels {
		o.Supersample--
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = d.Quality
	}
	if o.Line == (color.RGBA{}) {
		o.Line = d.Line
	}
	if o.Fill == (color.RGBA{}) {
		o.Fill = d.Fill
	}
	if o.Point == (color.RGBA{}) {
		o.Point = d.Point
	}
	return o
}

// scene holds the shapes of an object in [lat, lng] order.
type scene struct {
	fills  [][][]float64
	lines  [][][]float64
	points [][]float64
}

func (s *scene) empty() bool {
	return len(s.fills) == 0 && len(s.lines) == 0 && len(s.points) == 0
}

func buildScene(obj any) (*scene, error) {
	geoms, err := geo.Geometries(obj)
	if err != nil {
		return nil, err
	}

	s := &scene{}
	for _, g := range geoms {
		kind, _ := geo.ParseKind(g.Type)
		if kind == geo.KindPolygon {
			rings, err := geo.PolygonRings(g)
			if err != nil {
				return nil, err
			}
			s.fills = append(s.fills, rings...)
			s.lines = append(s.lines, closed(rings)...)
			continue
		}

		v, err := geo.ToArray(g)
		if err != nil {
			return nil, err
		}
		switch kind {
		case geo.KindPoint:
			s.points = append(s.points, v.([]float64))
		case geo.KindMultiPoint:
			s.points = append(s.points, v.([][]float64)...)
		case geo.KindLineString:
			s.lines = append(s.lines, v.([][]float64))
		case geo.KindMultiLineString:
			s.lines = append(s.lines, v.([][][]float64)...)
		case geo.KindMultiPolygon:
			rings := v.([][][]float64)
			s.fills = append(s.fills, rings...)
			s.lines = append(s.lines, closed(rings)...)
		}
	}

	return s, nil
}

func closed(rings [][][]float64) [][][]float64 {
	out := make([][][]float64, 0, len(rings))
	for _, r := range rings {
		if len(r) == 0 {
			continue
		}
		ring := make([][]float64, 0, len(r)+1)
		ring = append(ring, r...)
		out = append(out, append(ring, r[0]))
	}
	return out
}

// projection maps [lat, lng] into pixel space with an equirectangular fit
// that keeps the aspect ratio.
type projection struct {
	minX, maxY float64
	scale      float64
	offX, offY float64
}

func newProjection(s *scene, width, height, padding int) projection {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	visit := func(p []float64) {
		lat, lng := p[0], p[1]
		minX, maxX = math.Min(minX, lng), math.Max(maxX, lng)
		minY, maxY = math.Min(minY, lat), math.Max(maxY, lat)
	}
	for _, p := range s.points {
		visit(p)
	}
	for _, l := range s.lines {
		for _, p := range l {
			visit(p)
		}
	}

	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 && spanY == 0 {
		spanX, spanY = 1e-6, 1e-6
		minX -= spanX / 2
		maxY += spanY / 2
	}

	innerW := float64(width - 2*padding)
	innerH := float64(height - 2*padding)
	scale := math.Inf(1)
	if spanX > 0 {
		scale = innerW / spanX
	}
	if spanY > 0 {
		scale = math.Min(scale, innerH/spanY)
	}

	return projection{
		minX:  minX,
		maxY:  maxY,
		scale: scale,
		offX:  float64(padding) + (innerW-spanX*scale)/2,
		offY:  float64(padding) + (innerH-spanY*scale)/2,
	}
}

func (p projection) apply(pt []float64) (float32, float32) {
	x := p.offX + (pt[1]-p.minX)*p.scale
	y := p.offY + (p.maxY-pt[0])*p.scale
	return float32(x), float32(y)
}

// Rasterize draws obj, which must be valid GeoJSON, onto a new image.
func Rasterize(obj any, opts Options) (*image.RGBA, error) {
	opts = opts.normalize()

	s, err := buildScene(obj)
	if err != nil {
		return nil, err
	}

	out := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(out, out.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	if s.empty() {
		return out, nil
	}

	k := opts.Supersample
	w, h := opts.Width*k, opts.Height*k
	proj := newProjection(s, w, h, opts.Padding*k)
	stroke := float32(opts.Stroke) * float32(k)

	canvas := out
	if k > 1 {
		canvas = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}

	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over

	for _, ring := range s.fills {
		addRing(z, proj, ring)
	}
	flush(z, canvas, opts.Fill)

	for _, line := range s.lines {
		addStroke(z, proj, line, stroke)
	}
	flush(z, canvas, opts.Line)

	for _, p := range s.points {
		addDot(z, proj, p, stroke*2)
	}
	flush(z, canvas, opts.Point)

	if k > 1 {
		xdraw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	}

	return out, nil
}

func flush(z *vector.Rasterizer, dst *image.RGBA, c color.RGBA) {
	w, h := z.Size().X, z.Size().Y
	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
	z.Reset(w, h)
	z.DrawOp = draw.Over
}

func addRing(z *vector.Rasterizer, proj projection, ring [][]float64) {
	if len(ring) < 3 {
		return
	}
	x, y := proj.apply(ring[0])
	z.MoveTo(x, y)
	for _, p := range ring[1:] {
		x, y = proj.apply(p)
		z.LineTo(x, y)
	}
	z.ClosePath()
}

// addStroke adds one quad per segment; overlapping joins merge on fill.
func addStroke(z *vector.Rasterizer, proj projection, line [][]float64, width float32) {
	half := float64(width) / 2
	for i := 1; i < len(line); i++ {
		ax, ay := proj.apply(line[i-1])
		bx, by := proj.apply(line[i])

		dx, dy := float64(bx-ax), float64(by-ay)
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx := float32(-dy / length * half)
		ny := float32(dx / length * half)

		z.MoveTo(ax+nx, ay+ny)
		z.LineTo(bx+nx, by+ny)
		z.LineTo(bx-nx, by-ny)
		z.LineTo(ax-nx, ay-ny)
		z.ClosePath()
	}
}

func addDot(z *vector.Rasterizer, proj projection, p []float64, radius float32) {
	cx, cy := proj.apply(p)
	const steps = 12
	for i := 0; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / steps
		x := cx + radius*float32(math.Cos(a))
		y := cy + radius*float32(math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
}

// EncodeWebP writes img as lossy WebP.
func EncodeWebP(w io.Writer, img image.Image, quality float32) error {
	if err := webp.Encode(w, img, &webp.Options{Lossless: false, Quality: quality}); err != nil {
		return fmt.Errorf("encode webp: %w", err)
	}
	return nil
}

// Render rasterizes obj and writes it to w as WebP.
func Render(w io.Writer, obj any, opts Options) error {
	opts = opts.normalize()
	img, err := Rasterize(obj, opts)
	if err != nil {
		return err
	}
	return EncodeWebP(w, img, opts.Quality)
}

package chart

import (
	"bytes"
	"fmt"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	spec "github.com/okian/statboard/internal/domain/chart"
)

// Format is an output image encoding.
type Format string

// Supported formats.
const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// Defaults for rendered images.
const (
	defaultWidthPx    = 640
	defaultHeightPx   = 400
	defaultBarWidthPx = 28
	// pxPerInch is the raster resolution gonum uses for PNG output.
	pxPerInch = 96
)

// ParseFormat accepts png or svg case-insensitively; empty means png.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatPNG):
		return FormatPNG, nil
	case string(FormatSVG):
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType is the HTTP media type for the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Renderer draws chart specs with gonum/plot.
type Renderer struct {
	widthPx    int
	heightPx   int
	barWidthPx int
}

// NewRenderer constructs a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		widthPx:    defaultWidthPx,
		heightPx:   defaultHeightPx,
		barWidthPx: defaultBarWidthPx,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render encodes a bar spec as an image. Arc specs are drawn by the client.
func (r *Renderer) Render(s spec.Spec, format Format) ([]byte, error) {
	if s.Kind != spec.KindBar {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedChart, s.Kind)
	}
	if format != FormatPNG && format != FormatSVG {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if len(s.Points) == 0 {
		return nil, ErrEmptyChart
	}

	p, err := r.barPlot(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	wt, err := p.WriterTo(pixels(r.widthPx), pixels(r.heightPx), string(format))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// barPlot builds one bar series per colour group so each group gets its own
// palette entry and legend row. Bars outside a group are zero-height.
func (r *Renderer) barPlot(s spec.Spec) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = s.Category.Title
	p.Y.Label.Text = s.Value.Title
	p.Legend.Top = true

	categories := make([]string, len(s.Points))
	groups := make([]string, 0)
	byGroup := make(map[string]plotter.Values)
	for i, pt := range s.Points {
		categories[i] = pt.Category
		if _, ok := byGroup[pt.Color]; !ok {
			groups = append(groups, pt.Color)
			byGroup[pt.Color] = make(plotter.Values, len(s.Points))
		}
		byGroup[pt.Color][i] = pt.Value
	}

	for i, g := range groups {
		bars, err := plotter.NewBarChart(byGroup[g], pixels(r.barWidthPx))
		if err != nil {
			return nil, err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		p.Add(bars)
		if s.Color != nil && g != "" {
			p.Legend.Add(g, bars)
		}
	}

	p.NominalX(categories...)
	p.X.Tick.Label.XAlign = draw.XCenter
	p.Add(plotter.NewGrid())
	return p, nil
}

// pixels converts a pixel count to a gonum length at PNG resolution.
func pixels(px int) vg.Length {
	return vg.Length(px) * vg.Inch / pxPerInch
}

// Package chart renders bar chart specifications to PNG or SVG images.
package chart

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithSize sets the image size in pixels.
func WithSize(widthPx, heightPx int) Option {
	return func(r *Renderer) {
		if widthPx > 0 {
			r.widthPx = widthPx
		}
		if heightPx > 0 {
			r.heightPx = heightPx
		}
	}
}

// WithBarWidth sets the bar width in pixels.
func WithBarWidth(px int) Option {
	return func(r *Renderer) {
		if px > 0 {
			r.barWidthPx = px
		}
	}
}

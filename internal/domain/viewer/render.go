package viewer

import (
	"context"
	"errors"
)

// RenderedPage records how a page was laid out on screen. NativeWidth is in
// PDF points; RenderedWidth is the client width in pixels.
type RenderedPage struct {
	Index          int     `json:"index"`
	NativeWidth    float64 `json:"native_width"`
	NativeHeight   float64 `json:"native_height"`
	RenderedWidth  float64 `json:"rendered_width"`
	RenderedHeight float64 `json:"rendered_height"`
}

// ScaleFactor converts PDF points to rendered pixels.
func (p RenderedPage) ScaleFactor() float64 {
	if p.NativeWidth <= 0 {
		return 0
	}
	return p.RenderedWidth / p.NativeWidth
}

// Renderer draws one page at the given scale. Pages are rendered one at a
// time, in order.
type Renderer interface {
	Render(ctx context.Context, page PageGeometry, scale float64) (RenderedPage, error)
}

var errEmptyPage = errors.New("page has no area")

// LayoutRenderer computes page placement without rasterising. With a
// ContainerWidth the page is stretched to the container, as a canvas styled
// at 100% width would be; otherwise it keeps its scaled native width.
type LayoutRenderer struct {
	ContainerWidth float64
}

func (l LayoutRenderer) Render(ctx context.Context, page PageGeometry, scale float64) (RenderedPage, error) {
	if err := ctx.Err(); err != nil {
		return RenderedPage{}, err
	}
	if page.Width <= 0 || page.Height <= 0 {
		return RenderedPage{}, errEmptyPage
	}
	width := page.Width * scale
	if l.ContainerWidth > 0 {
		width = l.ContainerWidth
	}
	return RenderedPage{
		Index:          page.Index,
		NativeWidth:    page.Width,
		NativeHeight:   page.Height,
		RenderedWidth:  width,
		RenderedHeight: page.Height * width / page.Width,
	}, nil
}

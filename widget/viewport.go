package widget

import (
	"math"

	"github.com/greut/iiif-viewer/iiif"
	"github.com/greut/iiif-viewer/viewer"
)

// Viewport is the visible part of the world. A zoom of 1 shows one world
// unit across the container.
type Viewport struct {
	viewer  *Viewer
	bounds  iiif.Rect
	current iiif.Rect
	zoom    viewer.Spring
}

// Bounds implements viewer.Viewport.
func (vp *Viewport) Bounds() iiif.Rect {
	return vp.bounds
}

// Center implements viewer.Viewport.
func (vp *Viewport) Center(current bool) iiif.Point {
	if current {
		return vp.current.Center()
	}
	return vp.bounds.Center()
}

// Zoom implements viewer.Viewport.
func (vp *Viewport) Zoom(current bool) float64 {
	if current {
		return vp.zoom.Current
	}
	return vp.zoom.Target
}

// ZoomSpring implements viewer.Viewport.
func (vp *Viewport) ZoomSpring() *viewer.Spring {
	return &vp.zoom
}

// FitBounds implements viewer.Viewport. Like the client-side viewer, it
// fires a zoom event before returning.
func (vp *Viewport) FitBounds(bounds iiif.Rect, immediately bool) {
	vp.bounds = bounds
	if bounds.Width > 0 {
		vp.zoom.Target = 1 / bounds.Width
	}
	if immediately {
		vp.current = bounds
		vp.zoom.Current = vp.zoom.Target
	}

	vp.viewer.emit(CommandFitBounds, 0, map[string]interface{}{
		"bounds":      bounds,
		"immediately": immediately,
	})
	vp.viewer.Trigger(viewer.WidgetEvent{
		Name:   viewer.EventZoom,
		Zoom:   vp.zoom.Target,
		Center: bounds.Center(),
	})
}

// Settle ends the animations: a zoom target written through ZoomSpring is
// applied around the center, then current values catch up with targets.
func (vp *Viewport) Settle() {
	if vp.zoom.Target > 0 && vp.bounds.Width > 0 {
		width := 1 / vp.zoom.Target
		if math.Abs(width-vp.bounds.Width) > epsilon {
			center := vp.bounds.Center()
			height := vp.bounds.Height * width / vp.bounds.Width
			vp.bounds = iiif.Rect{
				X:      center.X - width/2,
				Y:      center.Y - height/2,
				Width:  width,
				Height: height,
			}
			vp.viewer.emit(CommandZoomTo, 0, map[string]interface{}{
				"zoom": vp.zoom.Target,
			})
		}
	}

	vp.current = vp.bounds
	vp.zoom.Current = vp.zoom.Target
}

const epsilon = 1e-9

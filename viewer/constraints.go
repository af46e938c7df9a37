package viewer

import (
	"github.com/greut/iiif-viewer/event"
	"github.com/greut/iiif-viewer/iiif"
	"github.com/greut/iiif-viewer/state"
)

// epsilon absorbs the floating point noise of the widget animations.
const epsilon = 0.00001

// transitionZoom is the zoom from which semantic zoom opens main images.
const transitionZoom = 0.01

func (r *Renderer) addWidgetHandlers() {
	if r.widget == nil {
		return
	}

	r.unsubscribe = append(r.unsubscribe,
		r.widget.AddHandler(EventZoom, func(e WidgetEvent) {
			if r.viewerState.Get().Perspective == state.Detail {
				r.applyConstraints()
			}
			center := r.widget.Viewport().Bounds().Center()
			r.openUnder(e.Zoom, center)
		}),
		r.widget.AddHandler(EventPan, func(e WidgetEvent) {
			if r.viewerState.Get().Perspective == state.Detail {
				r.applyConstraints()
			}
			zoom := r.widget.Viewport().Zoom(false)
			r.openUnder(zoom, e.Center)
		}),
	)
}

// Clamp snaps each edge of current exceeding constraint back onto it. It
// reports whether anything moved.
func Clamp(current, constraint iiif.Rect) (iiif.Rect, bool) {
	changed := false

	if current.X < constraint.X-epsilon {
		current.X = constraint.X
		changed = true
	}

	if current.Y < constraint.Y-epsilon {
		current.Y = constraint.Y
		changed = true
	}

	if current.Width > constraint.Width+epsilon {
		current.Width = constraint.Width
		changed = true
	}

	if current.Height > constraint.Height+epsilon {
		current.Height = constraint.Height
		changed = true
	}

	if current.X+current.Width > constraint.X+constraint.Width+epsilon {
		current.X = (constraint.X + constraint.Width) - current.Width
		changed = true
	}

	if current.Y+current.Height > constraint.Y+constraint.Height+epsilon {
		current.Y = (constraint.Y + constraint.Height) - current.Height
		changed = true
	}

	return current, changed
}

// applyConstraints keeps the viewport within the constraint bounds then caps
// the zoom.
//
// Fitting the viewport fires a zoom event synchronously, which lands here
// again; InZoomConstraints stops that second pass.
func (r *Renderer) applyConstraints() {
	s := r.renderState.Get()
	viewport := r.widget.Viewport()

	if s.ConstraintBounds != nil && !s.InZoomConstraints {
		bounds, changed := Clamp(viewport.Bounds(), *s.ConstraintBounds)
		if changed {
			debug("constraining viewport to %v", bounds)
			r.renderState.Set(func(s *state.Render) {
				s.InZoomConstraints = true
			})
			viewport.FitBounds(bounds, false)
			r.renderState.Set(func(s *state.Render) {
				s.InZoomConstraints = false
			})
		}
	}

	// There is no API to bound the zoom while it is animated, so the spring
	// target is overwritten.
	if zoom := viewport.Zoom(false); zoom > r.maxZoom {
		viewport.ZoomSpring().Target = r.maxZoom
	}
}

// openUnder requests the main images of the canvases under center once the
// zoom is past transitionZoom. It only runs with semantic zoom enabled.
func (r *Renderer) openUnder(zoom float64, center iiif.Point) {
	if !r.semanticZoom || zoom < transitionZoom {
		return
	}

	for _, canvas := range r.viewerState.Get().Canvases {
		if !canvas.ContainsPoint(center) {
			continue
		}
		for _, image := range canvas.MainImages() {
			if image.Status() == iiif.StatusIdle {
				r.bus.Publish(event.New(event.ImageNeeded, canvas, image))
			}
		}
	}
}

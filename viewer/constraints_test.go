package viewer

import (
	"testing"

	"github.com/greut/iiif-viewer/iiif"
	"github.com/greut/iiif-viewer/state"
)

func TestClamp(t *testing.T) {
	constraint := iiif.Rect{X: 0, Y: 0, Width: 100, Height: 100}

	var tests = []struct {
		current iiif.Rect
		want    iiif.Rect
		changed bool
	}{
		// inside
		{iiif.Rect{X: 10, Y: 10, Width: 50, Height: 50}, iiif.Rect{X: 10, Y: 10, Width: 50, Height: 50}, false},
		// within epsilon
		{iiif.Rect{X: -0.000001, Y: 0, Width: 100.000001, Height: 50}, iiif.Rect{X: -0.000001, Y: 0, Width: 100.000001, Height: 50}, false},
		// left and top
		{iiif.Rect{X: -10, Y: -20, Width: 50, Height: 50}, iiif.Rect{X: 0, Y: 0, Width: 50, Height: 50}, true},
		// right and bottom
		{iiif.Rect{X: 70, Y: 80, Width: 50, Height: 50}, iiif.Rect{X: 50, Y: 50, Width: 50, Height: 50}, true},
		// too wide and too tall
		{iiif.Rect{X: 0, Y: 0, Width: 150, Height: 120}, iiif.Rect{X: 0, Y: 0, Width: 100, Height: 100}, true},
		// too wide and off to the right
		{iiif.Rect{X: 30, Y: 0, Width: 150, Height: 10}, iiif.Rect{X: 0, Y: 0, Width: 100, Height: 10}, true},
	}

	for _, test := range tests {
		got, changed := Clamp(test.current, constraint)
		if got != test.want || changed != test.changed {
			t.Errorf("%#v: got %#v (%v) want %#v (%v)", test.current, got, changed, test.want, test.changed)
		}
		if changed && (got.X < constraint.X || got.Y < constraint.Y ||
			got.X+got.Width > constraint.X+constraint.Width ||
			got.Y+got.Height > constraint.Y+constraint.Height) {
			t.Errorf("%#v: overshoot %#v", test.current, got)
		}
	}
}

func detailFixture(t *testing.T) *fixture {
	f := newFixture(t, false)
	f.viewerState.Set(func(s *state.Viewer) {
		s.Perspective = state.Detail
	})
	f.renderState.Set(func(s *state.Render) {
		s.ConstraintBounds = &iiif.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	})
	return f
}

func TestApplyConstraints(t *testing.T) {
	for _, name := range []string{EventZoom, EventPan} {
		f := detailFixture(t)
		f.widget.viewport.bounds = iiif.Rect{X: -10, Y: 80, Width: 50, Height: 50}

		var during []bool
		f.widget.viewport.onFit = func() {
			during = append(during, f.renderState.Get().InZoomConstraints)
		}

		f.widget.trigger(WidgetEvent{Name: name, Zoom: 1})

		want := iiif.Rect{X: 0, Y: 50, Width: 50, Height: 50}
		if fits := f.widget.viewport.fits; len(fits) != 1 || fits[0] != want {
			t.Errorf("%s: got %#v want one fit to %#v", name, fits, want)
		}
		if len(during) != 1 || !during[0] {
			t.Errorf("%s: the constraint flag should be set while fitting", name)
		}
		if f.renderState.Get().InZoomConstraints {
			t.Errorf("%s: the constraint flag should be cleared", name)
		}
	}
}

func TestApplyConstraintsSkipped(t *testing.T) {
	var tests = []struct {
		perspective string
		inZoom      bool
	}{
		{state.Overview, false},
		{state.Detail, true},
	}

	for _, test := range tests {
		f := detailFixture(t)
		f.viewerState.Set(func(s *state.Viewer) {
			s.Perspective = test.perspective
		})
		f.renderState.Set(func(s *state.Render) {
			s.InZoomConstraints = test.inZoom
		})
		f.widget.viewport.bounds = iiif.Rect{X: -10, Y: -10, Width: 500, Height: 500}

		f.widget.trigger(WidgetEvent{Name: EventZoom, Zoom: 1})

		if n := len(f.widget.viewport.fits); n != 0 {
			t.Errorf("%s (%v): no fit expected, got %d", test.perspective, test.inZoom, n)
		}
	}
}

func TestMaxZoom(t *testing.T) {
	var tests = []struct {
		target float64
		want   float64
	}{
		{1.5, 1.5},
		{2, 2},
		{3, 2},
	}

	for _, test := range tests {
		f := detailFixture(t)
		f.widget.viewport.bounds = iiif.Rect{X: 10, Y: 10, Width: 10, Height: 10}
		f.widget.viewport.zoom = Spring{Current: 1, Target: test.target}

		f.widget.trigger(WidgetEvent{Name: EventZoom, Zoom: test.target})

		if got := f.widget.viewport.zoom.Target; got != test.want {
			t.Errorf("%v: got %v want %v", test.target, got, test.want)
		}
	}
}

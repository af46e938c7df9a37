package state

import (
	"github.com/greut/iiif-viewer/iiif"
)

// Perspectives
const (
	Overview = "overview"
	Detail   = "detail"
)

// Store holds a state value. Get returns a snapshot and Set applies a partial
// update in place.
type Store[T any] struct {
	value T
}

// NewStore creates a store holding the initial value.
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{value: initial}
}

// Get returns a copy of the current state.
func (s *Store[T]) Get() T {
	return s.value
}

// Set updates the state.
func (s *Store[T]) Set(update func(*T)) {
	update(&s.value)
}

// Render is the state of the scroll and zoom machinery.
type Render struct {
	LastScrollPosition float64
	OverviewLeft       float64
	OverviewTop        float64
	// ConstraintBounds is where the viewport is kept in the detail
	// perspective, nil meaning unconstrained.
	ConstraintBounds  *iiif.Rect
	InZoomConstraints bool
}

// Viewer is the state of the application around the viewer.
type Viewer struct {
	Perspective string
	Width       float64
	Height      float64
	Canvases    []*iiif.Canvas
}

// RenderStore is where the render state lives.
type RenderStore = Store[Render]

// ViewerStore is where the viewer state lives.
type ViewerStore = Store[Viewer]

package event

import (
	"github.com/greut/iiif-viewer/iiif"
)

// Type identifies the kind of event being published.
type Type string

// Events the viewer reacts to.
const (
	CanvasPositionUpdated Type = "canvas-position-updated"
	ImageNeeded           Type = "image-needed"
	ImageShow             Type = "image-show"
	ImageHide             Type = "image-hide"
	ImageOpacityUpdated   Type = "image-opacity-updated"
)

// Types lists every known event type.
var Types = []Type{
	CanvasPositionUpdated,
	ImageNeeded,
	ImageShow,
	ImageHide,
	ImageOpacityUpdated,
}

// Valid tells whether t is one of the known event types.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Event is a notification published on the bus.
type Event interface {
	Type() Type
}

// CanvasEvent carries a canvas whose layout changed.
type CanvasEvent struct {
	Kind   Type
	Canvas *iiif.Canvas
}

// Type implements Event.
func (e CanvasEvent) Type() Type { return e.Kind }

// ImageEvent carries the image resource concerned.
type ImageEvent struct {
	Kind  Type
	Image *iiif.ImageResource
}

// Type implements Event.
func (e ImageEvent) Type() Type { return e.Kind }

// New builds the event of type t. Canvas-position-updated expects a canvas,
// every other type an image.
func New(t Type, canvas *iiif.Canvas, image *iiif.ImageResource) Event {
	if t == CanvasPositionUpdated {
		return CanvasEvent{t, canvas}
	}
	return ImageEvent{t, image}
}

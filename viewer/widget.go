package viewer

import (
	"github.com/greut/iiif-viewer/iiif"
)

// Widget events.
const (
	EventZoom      = "zoom"
	EventPan       = "pan"
	EventTileDrawn = "tile-drawn"
)

// WidgetEvent is what the widget hands to its handlers.
type WidgetEvent struct {
	Name string
	// Item is the tiled image concerned by a tile-drawn event.
	Item   TiledImage
	Zoom   float64
	Center iiif.Point
}

// WidgetHandler reacts to a widget event.
type WidgetHandler func(WidgetEvent)

// TiledImageOptions describes an image to add to the widget world. Success
// or Error is called once the tile source has been opened, or not.
type TiledImageOptions struct {
	X          float64
	Y          float64
	Width      float64
	TileSource iiif.TileSource
	Opacity    float64
	Clip       *iiif.Rect
	Index      int
	Success    func(TiledImage)
	Error      func(message string)
}

// Controls are the user interactions the widget allows.
type Controls struct {
	ZoomPerClick  float64 `json:"zoomPerClick"`
	ZoomPerScroll float64 `json:"zoomPerScroll"`
	PanHorizontal bool    `json:"panHorizontal"`
	PanVertical   bool    `json:"panVertical"`
}

// Spring is an animated value. The widget moves Current toward Target on its
// own schedule.
type Spring struct {
	Current float64
	Target  float64
}

// Widget is the pan/zoom viewer doing the tiling, fetching and drawing.
type Widget interface {
	// AddTiledImage opens a tile source asynchronously.
	AddTiledImage(options TiledImageOptions)
	RemoveItem(item TiledImage)
	SetItemIndex(item TiledImage, index int)
	ItemCount() int
	// AddHandler registers a handler for a widget event and returns the
	// function removing it.
	AddHandler(name string, handler WidgetHandler) func()
	Viewport() Viewport
	// ContainerSize is the size of the widget element, in pixels.
	ContainerSize() iiif.Point
	SetControls(controls Controls)
}

// TiledImage is an image opened in the widget.
type TiledImage interface {
	SetPosition(position iiif.Point, immediately bool)
	SetWidth(width float64, immediately bool)
	SetOpacity(opacity float64)
}

// Viewport is the visible part of the widget world.
type Viewport interface {
	// Bounds returns the target bounds.
	Bounds() iiif.Rect
	Center(current bool) iiif.Point
	Zoom(current bool) float64
	FitBounds(bounds iiif.Rect, immediately bool)
	// ZoomSpring exposes the animation state of the zoom. Writing its target
	// overrides whatever zoom is in flight.
	ZoomSpring() *Spring
}

package viewer

import (
	"github.com/greut/iiif-viewer/event"
	"github.com/greut/iiif-viewer/iiif"
	"github.com/greut/iiif-viewer/state"

	d "github.com/tj/go-debug"
)

var debug = d.Debug("iiif:viewer")

// DefaultMaxZoom is the zoom level the viewport is capped at.
const DefaultMaxZoom = 2.0

// Config contains what a renderer works with.
type Config struct {
	Bus         *event.Bus
	RenderState *state.RenderStore
	ViewerState *state.ViewerStore
	Widget      Widget
	// MaxZoom defaults to DefaultMaxZoom.
	MaxZoom float64
	// SemanticZoom opens the main images of the canvas under the viewport
	// once zoomed in enough. It is experimental: which images to open is
	// still an open question, so it stays off unless asked for.
	SemanticZoom bool
}

// Renderer forwards the application events to the widget and keeps the
// widget objects derived from each image resource.
//
// Everything happens on the goroutine delivering the bus events and the
// widget callbacks; a renderer must not be shared between goroutines.
type Renderer struct {
	bus          *event.Bus
	renderState  *state.RenderStore
	viewerState  *state.ViewerStore
	widget       Widget
	maxZoom      float64
	semanticZoom bool

	tiledImages map[*iiif.ImageResource]TiledImage
	thumbnails  map[*iiif.ImageResource]TiledImage
	// pendingDraws cancels the tile-drawn handler of loaded images.
	pendingDraws map[*iiif.ImageResource]func()
	unsubscribe  []func()
}

// New creates a renderer listening on the bus and on the widget.
func New(config Config) *Renderer {
	r := &Renderer{
		bus:          config.Bus,
		renderState:  config.RenderState,
		viewerState:  config.ViewerState,
		widget:       config.Widget,
		maxZoom:      config.MaxZoom,
		semanticZoom: config.SemanticZoom,
		tiledImages:  make(map[*iiif.ImageResource]TiledImage),
		thumbnails:   make(map[*iiif.ImageResource]TiledImage),
		pendingDraws: make(map[*iiif.ImageResource]func()),
	}
	if r.maxZoom <= 0 {
		r.maxZoom = DefaultMaxZoom
	}

	r.subscribe(event.CanvasPositionUpdated, func(e event.Event) {
		canvas := e.(event.CanvasEvent).Canvas
		for _, image := range canvas.Images {
			r.UpdateImagePosition(image)
		}
	})
	r.subscribe(event.ImageNeeded, func(e event.Event) {
		r.OpenTileSource(e.(event.ImageEvent).Image)
	})
	r.subscribe(event.ImageShow, func(e event.Event) {
		// Being drawn implies the request went through, so the opacity can
		// be updated.
		image := e.(event.ImageEvent).Image
		if image.Status() == iiif.StatusDrawn {
			r.UpdateImageOpacity(image)
		}
	})
	r.subscribe(event.ImageHide, func(e event.Event) {
		image := e.(event.ImageEvent).Image
		if image.Status() == iiif.StatusDrawn {
			if item := r.tiledImages[image]; item != nil {
				item.SetOpacity(0)
			}
		}
	})
	r.subscribe(event.ImageOpacityUpdated, func(e event.Event) {
		image := e.(event.ImageEvent).Image
		if image.Status() == iiif.StatusDrawn {
			r.UpdateImageOpacity(image)
		}
	})

	r.addWidgetHandlers()

	return r
}

func (r *Renderer) subscribe(t event.Type, handler event.Handler) {
	r.unsubscribe = append(r.unsubscribe, r.bus.Subscribe(t, handler))
}

// Close stops listening to the bus and the widget.
func (r *Renderer) Close() {
	for _, unsubscribe := range r.unsubscribe {
		unsubscribe()
	}
	r.unsubscribe = nil

	for image := range r.pendingDraws {
		r.cancelDraw(image)
	}
}

// TiledImage returns the widget image of a loaded image resource.
func (r *Renderer) TiledImage(image *iiif.ImageResource) TiledImage {
	return r.tiledImages[image]
}

// OpenTileSource asks the widget to open the image tile source. Nothing
// happens if the image is already drawn or a load is in flight.
func (r *Renderer) OpenTileSource(image *iiif.ImageResource) {
	switch image.Status() {
	case iiif.StatusDrawn, iiif.StatusRequested, iiif.StatusLoaded:
		return
	}

	image.SetStatus(iiif.StatusRequested)
	bounds := image.GlobalBounds()

	r.widget.AddTiledImage(TiledImageOptions{
		X:          bounds.X,
		Y:          bounds.Y,
		Width:      bounds.Width,
		TileSource: image.TileSource,
		Opacity:    image.Opacity(),
		Clip:       image.ClipRegion,
		Index:      image.ZIndex,

		Success: func(item TiledImage) {
			r.tiledImages[image] = item
			image.SetStatus(iiif.StatusLoaded)
			r.SyncAllImageProperties(image)

			r.pendingDraws[image] = event.Once(func(fn func(WidgetEvent)) func() {
				return r.widget.AddHandler(EventTileDrawn, fn)
			}, func(e WidgetEvent) bool {
				return e.Item == item
			}, func(WidgetEvent) {
				delete(r.pendingDraws, image)
				image.SetStatus(iiif.StatusDrawn)
			})
		},

		Error: func(message string) {
			debug("cannot open %s: %s", image.TileSource.URL, message)
			image.SetStatus(iiif.StatusFailed)
		},
	})
}

// RemoveTileSource takes the image out of the widget world. It may be opened
// again afterwards.
func (r *Renderer) RemoveTileSource(image *iiif.ImageResource) {
	item := r.tiledImages[image]
	if item == nil {
		return
	}
	r.cancelDraw(image)
	r.widget.RemoveItem(item)
	delete(r.tiledImages, image)
	image.SetStatus(iiif.StatusIdle)
}

func (r *Renderer) cancelDraw(image *iiif.ImageResource) {
	if cancel, ok := r.pendingDraws[image]; ok {
		cancel()
		delete(r.pendingDraws, image)
	}
}

// SyncAllImageProperties pushes position, width, opacity and stacking order
// to the widget image.
func (r *Renderer) SyncAllImageProperties(image *iiif.ImageResource) {
	item := r.tiledImages[image]
	if item == nil {
		return
	}

	bounds := image.GlobalBounds()
	// The clip region is set once and for all by AddTiledImage.
	item.SetPosition(bounds.TopLeft(), true)
	item.SetWidth(bounds.Width, true)
	item.SetOpacity(image.ComposedOpacity())
	r.UpdateItemIndex(image)
}

// UpdateItemIndex moves the widget image to the image z-index, when the
// world holds enough items for it.
func (r *Renderer) UpdateItemIndex(image *iiif.ImageResource) {
	item := r.tiledImages[image]
	if item != nil && r.widget.ItemCount() > image.ZIndex {
		r.widget.SetItemIndex(item, image.ZIndex)
	}
}

// UpdateImagePosition moves the widget image to the image global bounds,
// without animation.
func (r *Renderer) UpdateImagePosition(image *iiif.ImageResource) {
	item := r.tiledImages[image]
	if item == nil {
		return
	}

	bounds := image.GlobalBounds()
	item.SetPosition(bounds.TopLeft(), true)
	item.SetWidth(bounds.Width, true)
}

// UpdateImageOpacity pushes the image opacity combined with its canvas'.
func (r *Renderer) UpdateImageOpacity(image *iiif.ImageResource) {
	if item := r.tiledImages[image]; item != nil {
		item.SetOpacity(image.ComposedOpacity())
	}
}

// OpenThumbnail shows a single image placeholder over the image bounds until
// RemoveThumbnail is called.
func (r *Renderer) OpenThumbnail(image *iiif.ImageResource, url string) {
	if r.thumbnails[image] != nil {
		return
	}

	bounds := image.GlobalBounds()
	r.widget.AddTiledImage(TiledImageOptions{
		X:          bounds.X,
		Y:          bounds.Y,
		Width:      bounds.Width,
		TileSource: iiif.TileSource{Type: "image", URL: url},
		Opacity:    image.ComposedOpacity(),
		Index:      0,
		Success: func(item TiledImage) {
			r.thumbnails[image] = item
		},
		Error: func(message string) {
			debug("cannot open thumbnail %s: %s", url, message)
		},
	})
}

// RemoveThumbnail hides then removes the image thumbnail.
func (r *Renderer) RemoveThumbnail(image *iiif.ImageResource) {
	item := r.thumbnails[image]
	if item == nil {
		return
	}
	item.SetOpacity(0)
	r.widget.RemoveItem(item)
	delete(r.thumbnails, image)
}

// DisableZoomAndPan freezes the viewport.
func (r *Renderer) DisableZoomAndPan() {
	r.widget.SetControls(Controls{
		ZoomPerClick:  1,
		ZoomPerScroll: 1,
		PanHorizontal: false,
		PanVertical:   false,
	})
}

// EnableZoomAndPan restores the default user controls.
func (r *Renderer) EnableZoomAndPan() {
	r.widget.SetControls(Controls{
		ZoomPerClick:  2,
		ZoomPerScroll: 1.2,
		PanHorizontal: true,
		PanVertical:   true,
	})
}

// SetViewerBoundsFromState fits the viewport on the overview area at the
// current scroll position.
func (r *Renderer) SetViewerBoundsFromState(immediately bool) {
	if r.widget == nil {
		return
	}

	rs := r.renderState.Get()
	vs := r.viewerState.Get()
	bounds := iiif.Rect{
		X:      rs.OverviewLeft,
		Y:      rs.OverviewTop + rs.LastScrollPosition,
		Width:  vs.Width,
		Height: vs.Height,
	}

	r.widget.Viewport().FitBounds(bounds, immediately)
}

// ViewerScale is the container width times the current zoom.
func (r *Renderer) ViewerScale() float64 {
	zoom := r.widget.Viewport().Zoom(true)
	return r.widget.ContainerSize().X * zoom
}

// ZoomTranslation is the current viewport center offset by half the
// container and by the scroll position.
func (r *Renderer) ZoomTranslation() iiif.Point {
	container := r.widget.ContainerSize()
	center := r.widget.Viewport().Center(true)

	return center.
		Minus(iiif.Point{X: container.X / 2, Y: container.Y / 2}).
		Minus(iiif.Point{X: 0, Y: r.renderState.Get().LastScrollPosition})
}

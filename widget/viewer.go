package widget

import (
	"fmt"

	"github.com/greut/iiif-viewer/iiif"
	"github.com/greut/iiif-viewer/viewer"

	d "github.com/tj/go-debug"
)

var debug = d.Debug("iiif:widget")

var unknownItem = "no pending tiled image %d"

// Options configures a Viewer.
type Options struct {
	// Container is the size of the viewer element in pixels.
	Container iiif.Point
	// Sink, when set, receives every command.
	Sink Sink
}

type handler struct {
	id uint64
	fn viewer.WidgetHandler
}

type pending struct {
	item    *TiledImage
	options viewer.TiledImageOptions
}

// Viewer keeps the world and the viewport of a pan/zoom viewer in memory.
// Loads stay pending until Loaded or Failed is called, which is how the
// client-side viewer reports back.
type Viewer struct {
	items     []*TiledImage
	pending   map[int]pending
	handlers  map[string][]handler
	viewport  *Viewport
	container iiif.Point
	controls  viewer.Controls
	sink      Sink

	nextItem    int
	nextHandler uint64
}

// New creates an empty viewer.
func New(options Options) *Viewer {
	v := &Viewer{
		pending:   make(map[int]pending),
		handlers:  make(map[string][]handler),
		container: options.Container,
		sink:      options.Sink,
	}
	v.viewport = &Viewport{
		viewer: v,
		bounds: iiif.Rect{X: 0, Y: 0, Width: 1, Height: 1},
		zoom:   viewer.Spring{Current: 1, Target: 1},
	}
	v.viewport.current = v.viewport.bounds
	return v
}

func (v *Viewer) emit(name string, item int, args map[string]interface{}) {
	if v.sink == nil {
		return
	}
	v.sink(Command{Name: name, Item: item, Args: args})
}

// AddTiledImage implements viewer.Widget.
func (v *Viewer) AddTiledImage(options viewer.TiledImageOptions) {
	v.nextItem++
	item := &TiledImage{
		ID:         v.nextItem,
		Position:   iiif.Point{X: options.X, Y: options.Y},
		Width:      options.Width,
		Opacity:    options.Opacity,
		Clip:       options.Clip,
		TileSource: options.TileSource,
		viewer:     v,
	}
	v.pending[item.ID] = pending{item, options}

	debug("add %d: %s", item.ID, options.TileSource.URL)
	v.emit(CommandAddTiledImage, item.ID, map[string]interface{}{
		"x":          options.X,
		"y":          options.Y,
		"width":      options.Width,
		"tileSource": options.TileSource,
		"opacity":    options.Opacity,
		"clip":       options.Clip,
		"index":      options.Index,
	})
}

// Loaded adds the pending item to the world and calls its success callback.
func (v *Viewer) Loaded(id int) error {
	p, ok := v.pending[id]
	if !ok {
		return fmt.Errorf(unknownItem, id)
	}
	delete(v.pending, id)

	index := p.options.Index
	if index < 0 || index > len(v.items) {
		index = len(v.items)
	}
	v.items = append(v.items, nil)
	copy(v.items[index+1:], v.items[index:])
	v.items[index] = p.item

	if p.options.Success != nil {
		p.options.Success(p.item)
	}
	return nil
}

// Failed drops the pending item and calls its error callback.
func (v *Viewer) Failed(id int, message string) error {
	p, ok := v.pending[id]
	if !ok {
		return fmt.Errorf(unknownItem, id)
	}
	delete(v.pending, id)

	debug("failed %d: %s", id, message)
	if p.options.Error != nil {
		p.options.Error(message)
	}
	return nil
}

// TileDrawn notifies the tile-drawn handlers.
func (v *Viewer) TileDrawn(id int) error {
	item := v.Item(id)
	if item == nil {
		return fmt.Errorf("no tiled image %d", id)
	}
	v.Trigger(viewer.WidgetEvent{Name: viewer.EventTileDrawn, Item: item})
	return nil
}

// Item returns the item of the world with that id.
func (v *Viewer) Item(id int) *TiledImage {
	for _, item := range v.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Items returns the world, bottom first.
func (v *Viewer) Items() []*TiledImage {
	return v.items
}

func (v *Viewer) indexOf(item viewer.TiledImage) int {
	for i, other := range v.items {
		if other == item {
			return i
		}
	}
	return -1
}

// RemoveItem implements viewer.Widget.
func (v *Viewer) RemoveItem(item viewer.TiledImage) {
	i := v.indexOf(item)
	if i < 0 {
		return
	}
	id := v.items[i].ID
	v.items = append(v.items[:i], v.items[i+1:]...)
	v.emit(CommandRemoveItem, id, nil)
}

// SetItemIndex implements viewer.Widget.
func (v *Viewer) SetItemIndex(item viewer.TiledImage, index int) {
	i := v.indexOf(item)
	if i < 0 || index < 0 || index >= len(v.items) {
		return
	}
	ti := v.items[i]
	v.items = append(v.items[:i], v.items[i+1:]...)
	v.items = append(v.items, nil)
	copy(v.items[index+1:], v.items[index:])
	v.items[index] = ti

	v.emit(CommandSetItemIndex, ti.ID, map[string]interface{}{"index": index})
}

// ItemCount implements viewer.Widget.
func (v *Viewer) ItemCount() int {
	return len(v.items)
}

// AddHandler implements viewer.Widget.
func (v *Viewer) AddHandler(name string, fn viewer.WidgetHandler) func() {
	v.nextHandler++
	id := v.nextHandler
	v.handlers[name] = append(v.handlers[name], handler{id, fn})

	return func() {
		hs := v.handlers[name]
		for i, h := range hs {
			if h.id == id {
				v.handlers[name] = append(hs[:i:i], hs[i+1:]...)
				return
			}
		}
	}
}

// Trigger calls the handlers registered for the event, in order.
func (v *Viewer) Trigger(e viewer.WidgetEvent) {
	hs := make([]handler, len(v.handlers[e.Name]))
	copy(hs, v.handlers[e.Name])
	for _, h := range hs {
		h.fn(e)
	}
}

// Viewport implements viewer.Widget.
func (v *Viewer) Viewport() viewer.Viewport {
	return v.viewport
}

// ContainerSize implements viewer.Widget.
func (v *Viewer) ContainerSize() iiif.Point {
	return v.container
}

// SetControls implements viewer.Widget.
func (v *Viewer) SetControls(controls viewer.Controls) {
	v.controls = controls
	v.emit(CommandSetControls, 0, map[string]interface{}{"controls": controls})
}

// Controls returns the current user controls.
func (v *Viewer) Controls() viewer.Controls {
	return v.controls
}

// ViewportChanged records where the client-side viewport stands, without
// issuing any command.
func (v *Viewer) ViewportChanged(bounds iiif.Rect, zoom float64, container iiif.Point) {
	v.viewport.bounds = bounds
	v.viewport.current = bounds
	v.viewport.zoom = viewer.Spring{Current: zoom, Target: zoom}
	if container.X > 0 && container.Y > 0 {
		v.container = container
	}
}

// Settle ends the pending viewport animations.
func (v *Viewer) Settle() {
	v.viewport.Settle()
}

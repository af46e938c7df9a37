package iiif

import (
	"encoding/json"
)

// Status is the lifecycle of an image resource within the viewer.
type Status string

// Image resources go idle → requested → loaded → drawn, or end up failed.
const (
	StatusIdle      Status = "idle"
	StatusRequested Status = "requested"
	StatusLoaded    Status = "loaded"
	StatusDrawn     Status = "drawn"
	StatusFailed    Status = "failed"
)

// Role tells how an image relates to its canvas.
type Role string

// Roles
const (
	RoleMain      Role = "main"
	RoleAlternate Role = "alternate"
	RoleDetail    Role = "detail"
)

// TileSource tells the viewer where to fetch an image from: either a single
// image (Type "image") or a IIIF image service info.json.
type TileSource struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url"`
}

// MarshalJSON renders a service as its bare info.json URL, like viewers
// expect it.
func (t TileSource) MarshalJSON() ([]byte, error) {
	if t.Type == "" {
		return json.Marshal(t.URL)
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	}{t.Type, t.URL})
}

// ImageResource is one drawable image of a canvas.
type ImageResource struct {
	TileSource TileSource
	// Dynamic is set when the image is served by a tiling service.
	Dynamic bool
	// ClipRegion is expressed in fractions of the parent once built.
	ClipRegion *Rect
	ZIndex     int
	Role       Role
	Label      interface{}
	// Bounds is the placement within the parent, in fractions of it.
	Bounds Rect
	Parent *Canvas

	opacity  float64
	status   Status
	watchers []func(*ImageResource, Status)
}

func newImageResource(tileSource TileSource, dynamic bool, clip *Rect) *ImageResource {
	return &ImageResource{
		TileSource: tileSource,
		Dynamic:    dynamic,
		ClipRegion: clip,
		Role:       RoleMain,
		Bounds:     Rect{0, 0, 1, 1},
		opacity:    1,
		status:     StatusIdle,
	}
}

// Status returns the lifecycle status.
func (ir *ImageResource) Status() Status {
	return ir.status
}

// SetStatus moves the image to a new status and notifies the watchers.
func (ir *ImageResource) SetStatus(status Status) {
	if ir.status == status {
		return
	}
	debug("%s: %s → %s", ir.TileSource.URL, ir.status, status)
	ir.status = status
	for _, fn := range ir.watchers {
		fn(ir, status)
	}
}

// Watch calls fn after every status change.
func (ir *ImageResource) Watch(fn func(*ImageResource, Status)) {
	ir.watchers = append(ir.watchers, fn)
}

// Opacity returns the image own opacity.
func (ir *ImageResource) Opacity() float64 {
	return ir.opacity
}

// SetOpacity changes the image own opacity.
func (ir *ImageResource) SetOpacity(opacity float64) {
	ir.opacity = opacity
}

// ComposedOpacity is the opacity actually drawn: the image's times its
// canvas'.
func (ir *ImageResource) ComposedOpacity() float64 {
	if ir.Parent == nil {
		return ir.opacity
	}
	return ir.opacity * ir.Parent.Opacity()
}

// GlobalBounds places the image in world coordinates using its parent
// bounds.
func (ir *ImageResource) GlobalBounds() Rect {
	if ir.Parent == nil {
		return ir.Bounds
	}
	p := ir.Parent.Bounds
	return Rect{
		X:      p.X + ir.Bounds.X*p.Width,
		Y:      p.Y + ir.Bounds.Y*p.Width,
		Width:  ir.Bounds.Width * p.Width,
		Height: ir.Bounds.Height * p.Height,
	}
}

// MarshalJSON exposes the descriptor along with its current state.
func (ir *ImageResource) MarshalJSON() ([]byte, error) {
	canvas := ""
	if ir.Parent != nil {
		canvas = ir.Parent.ID
	}
	return json.Marshal(struct {
		TileSource TileSource  `json:"tileSource"`
		Dynamic    bool        `json:"dynamic"`
		ClipRegion *Rect       `json:"clipRegion,omitempty"`
		ZIndex     int         `json:"zIndex"`
		Role       Role        `json:"imageType"`
		Label      interface{} `json:"label,omitempty"`
		Bounds     Rect        `json:"bounds"`
		Canvas     string      `json:"canvas,omitempty"`
		Opacity    float64     `json:"opacity"`
		Status     Status      `json:"status"`
	}{
		ir.TileSource,
		ir.Dynamic,
		ir.ClipRegion,
		ir.ZIndex,
		ir.Role,
		ir.Label,
		ir.Bounds,
		canvas,
		ir.opacity,
		ir.status,
	})
}

package widget

import (
	"github.com/greut/iiif-viewer/iiif"
)

// TiledImage is an image opened in the world.
type TiledImage struct {
	ID         int
	Position   iiif.Point
	Width      float64
	Opacity    float64
	Clip       *iiif.Rect
	TileSource iiif.TileSource

	viewer *Viewer
}

// SetPosition implements viewer.TiledImage.
func (ti *TiledImage) SetPosition(position iiif.Point, immediately bool) {
	ti.Position = position
	ti.viewer.emit(CommandSetPosition, ti.ID, map[string]interface{}{
		"x":           position.X,
		"y":           position.Y,
		"immediately": immediately,
	})
}

// SetWidth implements viewer.TiledImage.
func (ti *TiledImage) SetWidth(width float64, immediately bool) {
	ti.Width = width
	ti.viewer.emit(CommandSetWidth, ti.ID, map[string]interface{}{
		"width":       width,
		"immediately": immediately,
	})
}

// SetOpacity implements viewer.TiledImage.
func (ti *TiledImage) SetOpacity(opacity float64) {
	ti.Opacity = opacity
	ti.viewer.emit(CommandSetOpacity, ti.ID, map[string]interface{}{
		"opacity": opacity,
	})
}

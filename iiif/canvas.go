package iiif

// Canvas is the surface images are painted on. Its bounds are in world
// coordinates and move with the layout.
type Canvas struct {
	ID     string
	Label  interface{}
	Width  int
	Height int
	Bounds Rect
	Images []*ImageResource

	opacity float64
}

// NewCanvas creates a fully opaque canvas laid out at the origin with its
// pixel size.
func NewCanvas(id string, width, height int) *Canvas {
	return &Canvas{
		ID:      id,
		Width:   width,
		Height:  height,
		Bounds:  Rect{0, 0, float64(width), float64(height)},
		opacity: 1,
	}
}

// Opacity returns the canvas opacity, which multiplies its images'.
func (c *Canvas) Opacity() float64 {
	return c.opacity
}

// SetOpacity changes the canvas opacity.
func (c *Canvas) SetOpacity(opacity float64) {
	c.opacity = opacity
}

// ContainsPoint tells whether p is on the canvas.
func (c *Canvas) ContainsPoint(p Point) bool {
	return c.Bounds.ContainsPoint(p)
}

// MainImages returns the images with the main role, in order.
func (c *Canvas) MainImages() []*ImageResource {
	var images []*ImageResource
	for _, image := range c.Images {
		if image.Role == RoleMain {
			images = append(images, image)
		}
	}
	return images
}

// Image looks an image up by its position on the canvas.
func (c *Canvas) Image(index int) *ImageResource {
	if index < 0 || index >= len(c.Images) {
		return nil
	}
	return c.Images[index]
}

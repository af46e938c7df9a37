package iiif

import (
	"encoding/json"
	"fmt"
)

var manifestError = "IIIF manifest cannot be read: %v"

// ParseManifest decodes a Presentation 2 manifest.
func ParseManifest(body []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf(manifestError, err)
	}
	return &m, nil
}

// Canvases builds the canvases of the first sequence along with their image
// resources.
func (m *Manifest) Canvases() ([]*Canvas, error) {
	if len(m.Sequences) == 0 {
		return nil, nil
	}

	descriptions := m.Sequences[0].Canvases
	canvases := make([]*Canvas, 0, len(descriptions))
	for _, description := range descriptions {
		canvas, err := LoadCanvas(description)
		if err != nil {
			return nil, err
		}
		canvases = append(canvases, canvas)
	}

	return canvases, nil
}

// LoadCanvas builds a canvas and every image painted on it.
func LoadCanvas(description CanvasDescription) (*Canvas, error) {
	canvas := NewCanvas(description.ID, description.Width, description.Height)
	canvas.Label = description.Label

	for _, annotation := range description.Images {
		images, err := NewImageResources(annotation, canvas)
		if err != nil {
			return nil, err
		}
		canvas.Images = append(canvas.Images, images...)
	}

	debug("canvas %s: %d image(s)", canvas.ID, len(canvas.Images))
	return canvas, nil
}

// FindCanvas looks a canvas up by its @id.
func FindCanvas(canvases []*Canvas, id string) *Canvas {
	for _, canvas := range canvases {
		if canvas.ID == id {
			return canvas
		}
	}
	return nil
}

package iiif

// Resource types recognized on an annotation body.
const (
	TypeImage            = "dctypes:Image"
	TypeChoice           = "oa:Choice"
	TypeSpecificResource = "oa:SpecificResource"
)

// Nil is how a choice spells "no image".
const Nil = "rdf:nil"

// Service contains the image service advertised by a resource.
type Service struct {
	Context string      `json:"@context,omitempty" mapstructure:"@context"`
	ID      string      `json:"@id" mapstructure:"@id"`
	Profile interface{} `json:"profile,omitempty" mapstructure:"profile"`
}

// Resource is the body of an image annotation. Depending on Type, it is an
// image (ID, Service), a choice (Default, Item) or a specific resource (Full).
//
// Default, Item entries and Full are kept undecoded since they are either a
// nested resource or the Nil string.
type Resource struct {
	ID      string        `json:"@id,omitempty" mapstructure:"@id"`
	Type    string        `json:"@type" mapstructure:"@type"`
	Format  string        `json:"format,omitempty" mapstructure:"format"`
	Label   interface{}   `json:"label,omitempty" mapstructure:"label"`
	Width   int           `json:"width,omitempty" mapstructure:"width"`
	Height  int           `json:"height,omitempty" mapstructure:"height"`
	Service *Service      `json:"service,omitempty" mapstructure:"service"`
	Default interface{}   `json:"default,omitempty" mapstructure:"default"`
	Item    []interface{} `json:"item,omitempty" mapstructure:"item"`
	Full    interface{}   `json:"full,omitempty" mapstructure:"full"`
}

// Selector restricts a specific resource to a pixel region.
type Selector struct {
	Type   string `json:"@type,omitempty"`
	Region string `json:"region"`
}

// Annotation paints a resource on a canvas, possibly on a region of it
// (`on` ending in `#xywh=x,y,w,h`).
type Annotation struct {
	ID         string      `json:"@id,omitempty"`
	Type       string      `json:"@type,omitempty"` // oa:Annotation
	Motivation string      `json:"motivation,omitempty"`
	Resource   interface{} `json:"resource"`
	On         string      `json:"on"`
	Selector   *Selector   `json:"selector,omitempty"`
}

// CanvasDescription is a canvas as found in a manifest.
type CanvasDescription struct {
	ID        string       `json:"@id"`
	Type      string       `json:"@type,omitempty"` // sc:Canvas
	Label     interface{}  `json:"label,omitempty"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Thumbnail interface{}  `json:"thumbnail,omitempty"`
	Images    []Annotation `json:"images"`
}

// Sequence is an ordered list of canvases.
type Sequence struct {
	ID       string              `json:"@id,omitempty"`
	Type     string              `json:"@type,omitempty"` // sc:Sequence
	Label    interface{}         `json:"label,omitempty"`
	Canvases []CanvasDescription `json:"canvases"`
}

// Manifest is a IIIF Presentation 2 manifest, limited to what the viewer
// draws.
type Manifest struct {
	Context   string      `json:"@context,omitempty"`
	ID        string      `json:"@id"`
	Type      string      `json:"@type,omitempty"` // sc:Manifest
	Label     interface{} `json:"label,omitempty"`
	Sequences []Sequence  `json:"sequences"`
}

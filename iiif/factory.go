package iiif

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	d "github.com/tj/go-debug"
)

var debug = d.Debug("iiif")

// NewImageResources builds the image resources painted by an annotation on
// the parent canvas.
//
// A plain image gives one resource, a choice gives its default (main) then its
// items (alternates) in order and a specific resource gives its full image
// clipped by the selector. Entries meaning "no image" are left out. When the
// annotation targets a region of the canvas, every resource becomes a detail
// placed on that region. Regions and clips end up in fractions of the canvas.
func NewImageResources(annotation Annotation, parent *Canvas) ([]*ImageResource, error) {
	resource, err := decodeResource(annotation.Resource)
	if err != nil {
		return nil, err
	}
	if resource == nil {
		debug("%s paints no image", annotation.ID)
		return nil, nil
	}

	var images []*ImageResource
	switch resource.Type {
	case TypeImage:
		image, err := buildImage(resource)
		if err != nil {
			return nil, err
		}
		images = []*ImageResource{image}
	case TypeChoice:
		images, err = buildChoice(resource)
		if err != nil {
			return nil, err
		}
	case TypeSpecificResource:
		image, err := buildSpecificResource(resource, annotation.Selector)
		if err != nil {
			return nil, err
		}
		if image != nil {
			images = []*ImageResource{image}
		}
	default:
		return nil, UnsupportedTypeError{resource.Type}
	}

	region, err := segmentFromURL(annotation.On)
	if err != nil {
		return nil, err
	}

	for _, image := range images {
		image.Parent = parent
		if region != nil {
			image.Role = RoleDetail
			image.Bounds = region.fractionOf(parent.Bounds)
		}
		if image.ClipRegion != nil {
			clip := image.ClipRegion.fractionOf(parent.Bounds)
			image.ClipRegion = &clip
		}
	}

	return images, nil
}

// decodeResource turns a raw JSON-LD value into a Resource, or nil for
// "no image".
func decodeResource(raw interface{}) (*Resource, error) {
	switch v := raw.(type) {
	case string:
		if v == Nil {
			return nil, nil
		}
	case *Resource:
		return v, nil
	case Resource:
		return &v, nil
	case map[string]interface{}:
		var resource Resource
		if err := mapstructure.Decode(v, &resource); err != nil {
			return nil, fmt.Errorf("IIIF resource cannot be decoded: %v", err)
		}
		return &resource, nil
	}
	return nil, fmt.Errorf("IIIF resource cannot be decoded: %#v", raw)
}

// buildImage resolves an image resource, nil meaning "no image".
func buildImage(resource *Resource) (*ImageResource, error) {
	id := resource.ID
	dynamic := resource.Service != nil
	if dynamic {
		id = resource.Service.ID
	}

	var tileSource TileSource
	if dynamic {
		tileSource = TileSource{URL: id + "/info.json"}
	} else {
		tileSource = TileSource{Type: "image", URL: id}
	}

	clip, err := segmentFromURL(id)
	if err != nil {
		return nil, err
	}

	image := newImageResource(tileSource, dynamic, clip)
	image.Label = resource.Label
	return image, nil
}

func buildChoice(resource *Resource) ([]*ImageResource, error) {
	var images []*ImageResource

	add := func(raw interface{}, role Role, zIndex int) error {
		item, err := decodeResource(raw)
		if err != nil || item == nil {
			return err
		}
		image, err := buildImage(item)
		if err != nil {
			return err
		}
		image.Role = role
		image.ZIndex = zIndex
		images = append(images, image)
		return nil
	}

	if err := add(resource.Default, RoleMain, 0); err != nil {
		return nil, err
	}
	for _, item := range resource.Item {
		if err := add(item, RoleAlternate, 1); err != nil {
			return nil, err
		}
	}

	return images, nil
}

func buildSpecificResource(resource *Resource, selector *Selector) (*ImageResource, error) {
	full, err := decodeResource(resource.Full)
	if err != nil || full == nil {
		return nil, err
	}

	image, err := buildImage(full)
	if err != nil {
		return nil, err
	}

	if selector != nil && selector.Region != "" {
		clip, err := parseRegion(selector.Region, false)
		if err != nil {
			return nil, FragmentError{selector.Region, true}
		}
		image.ClipRegion = clip
		image.ZIndex = 0
	}

	return image, nil
}

// segmentFromURL reads the `#xywh=x,y,w,h` fragment of url, if any. The
// `pixel:` unit is accepted; other fragments and percentages are ignored.
func segmentFromURL(url string) (*Rect, error) {
	i := strings.Index(url, "#")
	if i < 0 {
		return nil, nil
	}
	fragment := url[i+1:]

	for _, param := range strings.Split(fragment, "&") {
		kv := strings.SplitN(param, "=", 2)
		if kv[0] != "xywh" {
			continue
		}
		if len(kv) < 2 {
			return nil, FragmentError{fragment, false}
		}

		value := strings.TrimPrefix(kv[1], "pixel:")
		if strings.HasPrefix(value, "percent:") {
			debug("ignoring fragment %s", fragment)
			return nil, nil
		}

		rect, err := parseRegion(value, true)
		if err != nil {
			return nil, FragmentError{fragment, false}
		}
		return rect, nil
	}

	return nil, nil
}

// parseRegion reads four comma separated pixel values. Fragments only keep
// the integer part of each value.
func parseRegion(region string, truncate bool) (*Rect, error) {
	values := strings.Split(region, ",")
	if len(values) != 4 {
		return nil, fmt.Errorf("%d values instead of 4", len(values))
	}

	var xywh [4]float64
	for i, value := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, err
		}
		if truncate {
			f = math.Trunc(f)
		}
		xywh[i] = f
	}

	return &Rect{xywh[0], xywh[1], xywh[2], xywh[3]}, nil
}

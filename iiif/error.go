package iiif

import (
	"fmt"
)

// error messages
var typeError = "IIIF resource `@type` is not supported: %#v"
var fragmentError = "IIIF `xywh` fragment is not recognized: %#v"
var regionError = "IIIF selector `region` is not recognized: %#v"

// UnsupportedTypeError is returned when an annotation resource is neither an
// image, a choice nor a specific resource.
type UnsupportedTypeError struct {
	Type string
}

// Error formats the UnsupportedTypeError message.
func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf(typeError, e.Type)
}

// FragmentError is returned for a malformed region fragment or selector.
type FragmentError struct {
	Fragment string
	Selector bool
}

// Error formats the FragmentError message.
func (e FragmentError) Error() string {
	if e.Selector {
		return fmt.Sprintf(regionError, e.Fragment)
	}
	return fmt.Sprintf(fragmentError, e.Fragment)
}

package iiif

import (
	"io/ioutil"
	"testing"
)

func readManifest(t *testing.T, name string) *Manifest {
	body, err := ioutil.ReadFile("../fixtures/" + name)
	if err != nil {
		t.Fatal(err)
	}
	m, err := ParseManifest(body)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestManifestCanvases(t *testing.T) {
	m := readManifest(t, "manifest.json")

	canvases, err := m.Canvases()
	if err != nil {
		t.Fatal(err)
	}

	var tests = []struct {
		canvas string
		images []Role
	}{
		{"http://example.org/iiif/book1/canvas/p1", []Role{RoleMain}},
		{"http://example.org/iiif/book1/canvas/p2", []Role{RoleMain, RoleAlternate, RoleDetail}},
	}

	if len(canvases) != len(tests) {
		t.Fatalf("bad number of canvases: got %d want %d", len(canvases), len(tests))
	}

	for _, test := range tests {
		canvas := FindCanvas(canvases, test.canvas)
		if canvas == nil {
			t.Errorf("canvas %s is missing", test.canvas)
			continue
		}
		if len(canvas.Images) != len(test.images) {
			t.Errorf("%s: got %d images want %d", test.canvas, len(canvas.Images), len(test.images))
			continue
		}
		for i, role := range test.images {
			if canvas.Images[i].Role != role {
				t.Errorf("%s image %d: got %v want %v", test.canvas, i, canvas.Images[i].Role, role)
			}
			if canvas.Images[i].Parent != canvas {
				t.Errorf("%s image %d: wrong parent", test.canvas, i)
			}
		}
	}

	detail := canvases[1].Images[2]
	if want := (Rect{0.5, 0.75, 0.25, 0.25}); !rectEqual(detail.Bounds, want) {
		t.Errorf("bad detail bounds: got %#v want %#v", detail.Bounds, want)
	}
	if want := (Rect{0.1, 0.1, 0.2, 0.2}); detail.ClipRegion == nil || !rectEqual(*detail.ClipRegion, want) {
		t.Errorf("bad detail clip: got %#v want %#v", detail.ClipRegion, want)
	}

	if main := canvases[1].MainImages(); len(main) != 1 || main[0] != canvases[1].Images[0] {
		t.Errorf("only the choice default is a main image, got %d", len(main))
	}
}

func TestManifestUnsupported(t *testing.T) {
	m := readManifest(t, "unsupported.json")

	_, err := m.Canvases()
	if e, ok := err.(UnsupportedTypeError); !ok || e.Type != "dctypes:Text" {
		t.Errorf("UnsupportedTypeError expected, got %#v", err)
	}
}

func TestParseManifestError(t *testing.T) {
	if _, err := ParseManifest([]byte("{")); err == nil {
		t.Errorf("an error was expected")
	}
}

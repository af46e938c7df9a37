package server

import (
	"io/ioutil"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/greut/iiif-viewer/iiif"
	"github.com/greut/iiif-viewer/viewer"
	"github.com/greut/iiif-viewer/widget"
)

const (
	page1 = "http://example.org/iiif/book1/canvas/p1"
	page2 = "http://example.org/iiif/book1/canvas/p2"
)

type recorder struct {
	commands []widget.Command
}

func (r *recorder) sink(c widget.Command) {
	r.commands = append(r.commands, c)
}

func (r *recorder) names() []string {
	names := make([]string, len(r.commands))
	for i, c := range r.commands {
		names[i] = c.Name
	}
	return names
}

func (r *recorder) last(name string) *widget.Command {
	for i := len(r.commands) - 1; i >= 0; i-- {
		if r.commands[i].Name == name {
			return &r.commands[i]
		}
	}
	return nil
}

func (r *recorder) reset() {
	r.commands = nil
}

func newSession(t *testing.T) (*Session, *recorder) {
	body, err := ioutil.ReadFile("../fixtures/manifest.json")
	if err != nil {
		t.Fatal(err)
	}
	manifest, err := iiif.ParseManifest(body)
	if err != nil {
		t.Fatal(err)
	}
	canvases, err := manifest.Canvases()
	if err != nil {
		t.Fatal(err)
	}

	r := &recorder{}
	s := NewSession(canvases, ViewerConfig{ThumbnailWidth: 32}, "http://localhost", r.sink)
	return s, r
}

func TestSessionStart(t *testing.T) {
	s, r := newSession(t)
	s.Start()

	if len(r.commands) != 1 || r.commands[0].Name != CommandCanvases {
		t.Fatalf("got %#v", r.names())
	}
	if id := r.commands[0].Args["session"]; id != s.ID || s.ID == "" {
		t.Errorf("session id: got %#v want %#v", id, s.ID)
	}
	if canvases := r.commands[0].Args["canvases"].([]canvasImages); len(canvases) != 2 {
		t.Errorf("got %d canvases want 2", len(canvases))
	}
}

func TestSessionImageLifecycle(t *testing.T) {
	s, r := newSession(t)

	var tests = []struct {
		message Message
		want    []string
		status  iiif.Status
	}{
		{
			Message{Type: "image-needed", Canvas: page1},
			[]string{CommandStatus, widget.CommandAddTiledImage},
			iiif.StatusRequested,
		},
		{
			Message{Type: MessageLoaded, Item: 1},
			[]string{
				CommandStatus,
				widget.CommandSetPosition,
				widget.CommandSetWidth,
				widget.CommandSetOpacity,
				widget.CommandSetItemIndex,
			},
			iiif.StatusLoaded,
		},
		{
			Message{Type: MessageTileDrawn, Item: 1},
			[]string{CommandStatus},
			iiif.StatusDrawn,
		},
		{
			Message{Type: "image-hide", Canvas: page1},
			[]string{widget.CommandSetOpacity},
			iiif.StatusDrawn,
		},
	}

	image := iiif.FindCanvas(s.canvases, page1).Image(0)
	for _, test := range tests {
		r.reset()
		if err := s.Handle(test.message); err != nil {
			t.Fatalf("%s: %v", test.message.Type, err)
		}

		got := r.names()
		if strings.Join(got, " ") != strings.Join(test.want, " ") {
			t.Errorf("%s: got %#v want %#v", test.message.Type, got, test.want)
		}
		if image.Status() != test.status {
			t.Errorf("%s: status got %v want %v", test.message.Type, image.Status(), test.status)
		}
	}

	if status := r.last(CommandStatus); status != nil {
		t.Errorf("no status expected when hiding, got %#v", status)
	}
}

func TestSessionFailure(t *testing.T) {
	s, r := newSession(t)
	image := iiif.FindCanvas(s.canvases, page1).Image(0)

	_ = s.Handle(Message{Type: "image-needed", Canvas: page1})
	if err := s.Handle(Message{Type: MessageFailed, Item: 1, Message: "404"}); err != nil {
		t.Fatal(err)
	}

	if image.Status() != iiif.StatusFailed {
		t.Errorf("got %v want %v", image.Status(), iiif.StatusFailed)
	}
	if c := r.last(CommandStatus); c == nil || c.Args["status"] != iiif.StatusFailed {
		t.Errorf("a failed status should be sent, got %#v", c)
	}
}

func TestSessionErrors(t *testing.T) {
	s, _ := newSession(t)

	var tests = []Message{
		{Type: "nope"},
		{Type: "image-needed", Canvas: "http://example.org/missing"},
		{Type: "image-show", Canvas: page1, Image: 5},
		{Type: "canvas-position-updated", Canvas: "http://example.org/missing"},
		{Type: MessageLoaded, Item: 42},
		{Type: MessageThumbnail, Canvas: page2, Image: -1},
	}

	for _, test := range tests {
		if err := s.Handle(test); err == nil {
			t.Errorf("%#v should fail", test)
		}
	}
}

func TestSessionCanvasPosition(t *testing.T) {
	s, r := newSession(t)
	canvas := iiif.FindCanvas(s.canvases, page1)

	_ = s.Handle(Message{Type: "image-needed", Canvas: page1})
	_ = s.Handle(Message{Type: MessageLoaded, Item: 1})
	r.reset()

	bounds := iiif.Rect{X: 1000, Y: 0, Width: 500, Height: 750}
	if err := s.Handle(Message{Type: "canvas-position-updated", Canvas: page1, Bounds: &bounds}); err != nil {
		t.Fatal(err)
	}

	if canvas.Bounds != bounds {
		t.Errorf("bounds: got %#v", canvas.Bounds)
	}
	c := r.last(widget.CommandSetPosition)
	if c == nil || c.Args["x"] != 1000.0 || c.Args["y"] != 0.0 {
		t.Errorf("got %#v", c)
	}
	if c := r.last(widget.CommandSetWidth); c == nil || c.Args["width"] != 500.0 {
		t.Errorf("got %#v", c)
	}
}

func TestSessionOpacity(t *testing.T) {
	s, r := newSession(t)
	image := iiif.FindCanvas(s.canvases, page1).Image(0)

	_ = s.Handle(Message{Type: "image-needed", Canvas: page1})
	_ = s.Handle(Message{Type: MessageLoaded, Item: 1})
	_ = s.Handle(Message{Type: MessageTileDrawn, Item: 1})
	r.reset()

	opacity := 0.5
	if err := s.Handle(Message{Type: "image-opacity-updated", Canvas: page1, Opacity: &opacity}); err != nil {
		t.Fatal(err)
	}

	if image.Opacity() != 0.5 {
		t.Errorf("got %v want 0.5", image.Opacity())
	}
	if c := r.last(widget.CommandSetOpacity); c == nil || c.Args["opacity"] != 0.5 {
		t.Errorf("got %#v", c)
	}
}

func TestSessionThumbnail(t *testing.T) {
	s, r := newSession(t)

	var tests = []struct {
		canvas string
		want   string
	}{
		{page1, "http://example.org/images/book1-page1/full/32,/0/default.jpg"},
		{page2, "http://localhost/thumbnail/http:%2F%2Fexample.org%2Fiiif%2Fbook1%2Fres%2Fpage2.jpg/32.jpg"},
	}

	for _, test := range tests {
		r.reset()
		if err := s.Handle(Message{Type: MessageThumbnail, Canvas: test.canvas}); err != nil {
			t.Fatal(err)
		}

		c := r.last(widget.CommandAddTiledImage)
		if c == nil {
			t.Fatalf("got %#v", r.names())
		}
		if ts := c.Args["tileSource"].(iiif.TileSource); ts.URL != test.want {
			t.Errorf("got %#v want %#v", ts.URL, test.want)
		}
	}

	if err := s.Handle(Message{Type: MessageLoaded, Item: 2}); err != nil {
		t.Fatal(err)
	}
	r.reset()
	if err := s.Handle(Message{Type: MessageThumbnailRemove, Canvas: page2}); err != nil {
		t.Fatal(err)
	}
	if c := r.last(widget.CommandRemoveItem); c == nil || c.Item != 2 {
		t.Errorf("got %#v", r.names())
	}
}

func TestSessionFit(t *testing.T) {
	s, r := newSession(t)

	scroll := 10.0
	err := s.Handle(Message{
		Type:     MessageState,
		Scroll:   &scroll,
		Overview: &iiif.Point{X: 5, Y: 0},
		Size:     &iiif.Point{X: 100, Y: 50},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Handle(Message{Type: MessageFit, Immediately: true}); err != nil {
		t.Fatal(err)
	}

	c := r.last(widget.CommandFitBounds)
	if c == nil {
		t.Fatalf("got %#v", r.names())
	}
	if bounds := c.Args["bounds"]; bounds != (iiif.Rect{X: 5, Y: 10, Width: 100, Height: 50}) {
		t.Errorf("got %#v", bounds)
	}
}

func TestSessionControls(t *testing.T) {
	s, r := newSession(t)

	var tests = []struct {
		enabled bool
		want    viewer.Controls
	}{
		{false, viewer.Controls{ZoomPerClick: 1, ZoomPerScroll: 1}},
		{true, viewer.Controls{ZoomPerClick: 2, ZoomPerScroll: 1.2, PanHorizontal: true, PanVertical: true}},
	}

	for _, test := range tests {
		if err := s.Handle(Message{Type: MessageControls, Enabled: test.enabled}); err != nil {
			t.Fatal(err)
		}
		if c := r.last(widget.CommandSetControls); c == nil || c.Args["controls"] != test.want {
			t.Errorf("got %#v want %#v", c, test.want)
		}
	}
}

func TestSessionConstraints(t *testing.T) {
	s, r := newSession(t)

	err := s.Handle(Message{
		Type:        MessageState,
		Perspective: "detail",
		Constraint:  &iiif.Rect{X: 0, Y: 0, Width: 1000, Height: 1500},
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.Handle(Message{
		Type:   MessagePan,
		Bounds: &iiif.Rect{X: -100, Y: 0, Width: 500, Height: 400},
		Zoom:   0.002,
		Center: iiif.Point{X: 150, Y: 200},
	})
	if err != nil {
		t.Fatal(err)
	}

	c := r.last(widget.CommandFitBounds)
	if c == nil {
		t.Fatalf("got %#v", r.names())
	}
	if bounds := c.Args["bounds"]; bounds != (iiif.Rect{X: 0, Y: 0, Width: 500, Height: 400}) {
		t.Errorf("got %#v", bounds)
	}
	if s.renderState.Get().InZoomConstraints {
		t.Errorf("the constraint flag should be cleared")
	}
}

func readCommand(t *testing.T, conn *websocket.Conn) widget.Command {
	var c widget.Command
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&c); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSessionHandler(t *testing.T) {
	ts := newServer()
	defer ts.Close()

	endpoint := "ws" + strings.TrimPrefix(ts.URL, "http") + "/session/manifest.json"
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if c := readCommand(t, conn); c.Name != CommandCanvases {
		t.Fatalf("got %#v want %#v", c.Name, CommandCanvases)
	}

	var steps = []struct {
		message Message
		want    []string
	}{
		{Message{Type: "image-needed", Canvas: page1}, []string{CommandStatus, widget.CommandAddTiledImage}},
		{Message{Type: "nope"}, []string{CommandError}},
		{Message{Type: MessageLoaded, Item: 1}, []string{CommandStatus, widget.CommandSetPosition}},
	}

	for _, step := range steps {
		if err := conn.WriteJSON(step.message); err != nil {
			t.Fatal(err)
		}
		for _, name := range step.want {
			if c := readCommand(t, conn); c.Name != name {
				t.Errorf("%s: got %#v want %#v", step.message.Type, c.Name, name)
			}
		}
	}
}

func TestSessionHandlerMissing(t *testing.T) {
	ts := newServer()
	defer ts.Close()

	endpoint := "ws" + strings.TrimPrefix(ts.URL, "http") + "/session/missing.json"
	_, resp, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err == nil {
		t.Fatal("the handshake should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("got %#v want %#v", resp, http.StatusNotFound)
	}
}

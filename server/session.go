package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang/groupcache"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/greut/iiif-viewer/event"
	"github.com/greut/iiif-viewer/iiif"
	"github.com/greut/iiif-viewer/state"
	"github.com/greut/iiif-viewer/viewer"
	"github.com/greut/iiif-viewer/widget"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

// Commands sent to the client on top of the widget ones.
const (
	CommandCanvases = "canvases"
	CommandStatus   = "status"
	CommandError    = "error"
)

// Messages sent by the client on top of the application events.
const (
	MessageLoaded          = "loaded"
	MessageFailed          = "failed"
	MessageTileDrawn       = "tile-drawn"
	MessageViewport        = "viewport"
	MessageZoom            = "zoom"
	MessagePan             = "pan"
	MessageState           = "state"
	MessageFit             = "fit"
	MessageControls        = "controls"
	MessageThumbnail       = "thumbnail"
	MessageThumbnailRemove = "thumbnail-remove"
)

var unknownMessage = "unknown message type: %#v"
var unknownCanvas = "no canvas %#v"
var unknownImage = "no image %d on canvas %#v"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is what the client side viewer sends over the session.
type Message struct {
	Type        string      `json:"type"`
	Canvas      string      `json:"canvas,omitempty"`
	Image       int         `json:"image,omitempty"`
	Item        int         `json:"item,omitempty"`
	Message     string      `json:"message,omitempty"`
	Bounds      *iiif.Rect  `json:"bounds,omitempty"`
	Opacity     *float64    `json:"opacity,omitempty"`
	Zoom        float64     `json:"zoom,omitempty"`
	Center      iiif.Point  `json:"center"`
	Container   iiif.Point  `json:"container"`
	Perspective string      `json:"perspective,omitempty"`
	Scroll      *float64    `json:"scroll,omitempty"`
	Overview    *iiif.Point `json:"overview,omitempty"`
	Size        *iiif.Point `json:"size,omitempty"`
	Constraint  *iiif.Rect  `json:"constraint,omitempty"`
	Immediately bool        `json:"immediately,omitempty"`
	Enabled     bool        `json:"enabled,omitempty"`
}

// Session drives one client side viewer: the client reports what happens
// and receives widget commands back.
type Session struct {
	ID string

	canvases       []*iiif.Canvas
	bus            *event.Bus
	renderState    *state.RenderStore
	viewerState    *state.ViewerStore
	widget         *widget.Viewer
	renderer       *viewer.Renderer
	sink           widget.Sink
	thumbnailBase  string
	thumbnailWidth int
}

// NewSession wires a renderer onto a widget whose commands go to the sink.
func NewSession(canvases []*iiif.Canvas, config ViewerConfig, thumbnailBase string, sink widget.Sink) *Session {
	s := &Session{
		ID:             uuid.New().String(),
		canvases:       canvases,
		bus:            event.NewBus(),
		renderState:    state.NewStore(state.Render{}),
		viewerState:    state.NewStore(state.Viewer{Perspective: state.Overview, Canvases: canvases}),
		sink:           sink,
		thumbnailBase:  thumbnailBase,
		thumbnailWidth: config.ThumbnailWidth,
	}

	s.widget = widget.New(widget.Options{Sink: sink})
	s.renderer = viewer.New(viewer.Config{
		Bus:          s.bus,
		RenderState:  s.renderState,
		ViewerState:  s.viewerState,
		Widget:       s.widget,
		MaxZoom:      config.MaxZoom,
		SemanticZoom: config.SemanticZoom,
	})

	for _, canvas := range canvases {
		canvasID := canvas.ID
		for i, image := range canvas.Images {
			index := i
			image.Watch(func(_ *iiif.ImageResource, status iiif.Status) {
				s.send(CommandStatus, map[string]interface{}{
					"canvas": canvasID,
					"image":  index,
					"status": status,
				})
			})
		}
	}

	debug("session %s: %d canvas(es)", s.ID, len(canvases))
	return s
}

func (s *Session) send(name string, args map[string]interface{}) {
	if s.sink != nil {
		s.sink(widget.Command{Name: name, Args: args})
	}
}

// Start sends the canvases to the client.
func (s *Session) Start() {
	s.send(CommandCanvases, map[string]interface{}{
		"session":  s.ID,
		"canvases": toCanvasImages(s.canvases),
	})
}

// Close detaches the renderer.
func (s *Session) Close() {
	s.renderer.Close()
	debug("session %s closed", s.ID)
}

func (s *Session) image(m Message) (*iiif.Canvas, *iiif.ImageResource, error) {
	canvas := iiif.FindCanvas(s.canvases, m.Canvas)
	if canvas == nil {
		return nil, nil, fmt.Errorf(unknownCanvas, m.Canvas)
	}
	image := canvas.Image(m.Image)
	if image == nil {
		return nil, nil, fmt.Errorf(unknownImage, m.Image, m.Canvas)
	}
	return canvas, image, nil
}

// publish turns a client message into an application event.
func (s *Session) publish(t event.Type, m Message) error {
	if t == event.CanvasPositionUpdated {
		canvas := iiif.FindCanvas(s.canvases, m.Canvas)
		if canvas == nil {
			return fmt.Errorf(unknownCanvas, m.Canvas)
		}
		if m.Bounds != nil {
			canvas.Bounds = *m.Bounds
		}
		s.bus.Publish(event.New(t, canvas, nil))
		return nil
	}

	canvas, image, err := s.image(m)
	if err != nil {
		return err
	}
	if t == event.ImageOpacityUpdated && m.Opacity != nil {
		image.SetOpacity(*m.Opacity)
	}
	s.bus.Publish(event.New(t, canvas, image))
	return nil
}

func (s *Session) setState(m Message) {
	s.viewerState.Set(func(v *state.Viewer) {
		if m.Perspective != "" {
			v.Perspective = m.Perspective
		}
		if m.Size != nil {
			v.Width = m.Size.X
			v.Height = m.Size.Y
		}
	})
	s.renderState.Set(func(r *state.Render) {
		if m.Scroll != nil {
			r.LastScrollPosition = *m.Scroll
		}
		if m.Overview != nil {
			r.OverviewLeft = m.Overview.X
			r.OverviewTop = m.Overview.Y
		}
		if m.Constraint != nil {
			bounds := *m.Constraint
			r.ConstraintBounds = &bounds
		}
	})
}

func (s *Session) viewport(m Message) {
	bounds := s.widget.Viewport().Bounds()
	if m.Bounds != nil {
		bounds = *m.Bounds
	}
	zoom := m.Zoom
	if zoom <= 0 {
		zoom = s.widget.Viewport().Zoom(true)
	}
	s.widget.ViewportChanged(bounds, zoom, m.Container)
}

// Handle applies one client message.
func (s *Session) Handle(m Message) error {
	defer s.widget.Settle()

	if t := event.Type(m.Type); t.Valid() {
		return s.publish(t, m)
	}

	switch m.Type {
	case MessageLoaded:
		return s.widget.Loaded(m.Item)
	case MessageFailed:
		return s.widget.Failed(m.Item, m.Message)
	case MessageTileDrawn:
		return s.widget.TileDrawn(m.Item)
	case MessageViewport:
		s.viewport(m)
	case MessageZoom:
		s.viewport(m)
		s.widget.Trigger(viewer.WidgetEvent{Name: viewer.EventZoom, Zoom: s.widget.Viewport().Zoom(false), Center: m.Center})
	case MessagePan:
		s.viewport(m)
		s.widget.Trigger(viewer.WidgetEvent{Name: viewer.EventPan, Center: m.Center})
	case MessageState:
		s.setState(m)
	case MessageFit:
		s.renderer.SetViewerBoundsFromState(m.Immediately)
	case MessageControls:
		if m.Enabled {
			s.renderer.EnableZoomAndPan()
		} else {
			s.renderer.DisableZoomAndPan()
		}
	case MessageThumbnail:
		_, image, err := s.image(m)
		if err != nil {
			return err
		}
		s.renderer.OpenThumbnail(image, thumbnailURL(s.thumbnailBase, s.thumbnailWidth, image))
	case MessageThumbnailRemove:
		_, image, err := s.image(m)
		if err != nil {
			return err
		}
		s.renderer.RemoveThumbnail(image)
	default:
		return fmt.Errorf(unknownMessage, m.Type)
	}
	return nil
}

// SessionHandler upgrades the connection and runs a viewer session on the
// manifest.
func SessionHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	identifier := vars["identifier"]

	ctx := r.Context()
	config, _ := ctx.Value(ContextKey("config")).(*Config)
	manifests, _ := ctx.Value(ContextKey("manifests")).(*groupcache.Group)

	_, canvases, _, err := loadCanvases(identifier, config, manifests)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Cannot upgrade the connection: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	var writeErr error
	sink := func(c widget.Command) {
		if writeErr != nil {
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		writeErr = conn.WriteJSON(c)
	}

	session := NewSession(canvases, config.Viewer, baseURL(r), sink)
	defer session.Close()
	session.Start()

	for writeErr == nil {
		var m Message
		if err := conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Session %s: %v", session.ID, err)
			}
			return
		}

		if err := session.Handle(m); err != nil {
			debug("session %s: %v", session.ID, err)
			sink(widget.Command{Name: CommandError, Args: map[string]interface{}{
				"message": err.Error(),
			}})
		}
	}
}

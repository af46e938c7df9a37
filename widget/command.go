package widget

// Commands sent to the client-side viewer.
const (
	CommandAddTiledImage = "add-tiled-image"
	CommandRemoveItem    = "remove-item"
	CommandSetItemIndex  = "set-item-index"
	CommandSetPosition   = "set-position"
	CommandSetWidth      = "set-width"
	CommandSetOpacity    = "set-opacity"
	CommandFitBounds     = "fit-bounds"
	CommandZoomTo        = "zoom-to"
	CommandSetControls   = "set-controls"
)

// Command is a change the client-side viewer has to replay.
type Command struct {
	Name string                 `json:"command"`
	Item int                    `json:"item,omitempty"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// Sink receives every command issued by a Viewer.
type Sink func(Command)

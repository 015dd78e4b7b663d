package model

// SuggestRequest represents the request parameters for a one-shot blend
type SuggestRequest struct {
	Query   string
	Focused bool
}

// SuggestResponse represents the blended option list
type SuggestResponse struct {
	Options []AutocompleteOption `json:"options"`
}

// SearchRequest is a free-text (Enter key) submission
type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}

// SelectRequest carries the option the user picked
type SelectRequest struct {
	Option AutocompleteOption `json:"option"`
}

// MapView describes what the map widget should render
type MapView struct {
	Center Location `json:"center"`
	Zoom   int      `json:"zoom"`
	Marker *Place   `json:"marker,omitempty"`
}

// HistoryEntryView is a history item decorated for display
type HistoryEntryView struct {
	SearchHistoryItem
	RelativeTime string `json:"relativeTime"`
}

// Session message types sent by a websocket client
const (
	MessageInput  = "input"
	MessageFocus  = "focus"
	MessageBlur   = "blur"
	MessageSelect = "select"
	MessageEnter  = "enter"
)

// SessionMessage is one search box event sent by a websocket client
type SessionMessage struct {
	Type   string              `json:"type" validate:"required,oneof=input focus blur select enter"`
	Text   string              `json:"text,omitempty"`
	Option *AutocompleteOption `json:"option,omitempty" validate:"required_if=Type select"`
}

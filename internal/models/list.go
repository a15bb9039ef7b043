package models

// Action is the list operation an utterance asks for
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
	ActionSearch Action = "search"
	ActionNone   Action = "none"
)

// Valid reports whether a is one of the known actions
func (a Action) Valid() bool {
	switch a {
	case ActionAdd, ActionRemove, ActionSearch, ActionNone:
		return true
	}
	return false
}

// ListItem represents a single entry on a shopping list
type ListItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	NormalizedKey string `json:"normalized_key"`
	Quantity      int    `json:"quantity"`
	Bought        bool   `json:"bought"`
}

// ParsedIntent is the structured interpretation of one utterance
type ParsedIntent struct {
	Action         Action `json:"action"`
	DisplayItem    string `json:"item"`
	NormalizedItem string `json:"normalized_item"`
	Quantity       int    `json:"quantity"`
}

// NoIntent is returned when no action could be detected
func NoIntent() ParsedIntent {
	return ParsedIntent{Action: ActionNone, Quantity: 1}
}

// ListSnapshot is a point-in-time copy of a list, as handed to persistence
type ListSnapshot struct {
	Owner  string     `json:"owner"`
	Items  []ListItem `json:"items"`
	Reason string     `json:"reason,omitempty"`
}

// VoiceCommandRequest is the request body for submitting an utterance
type VoiceCommandRequest struct {
	Transcript string `json:"transcript"`
	Lang       string `json:"lang"`
	Final      *bool  `json:"final,omitempty"`
}

// VoiceCommandResponse is returned after an utterance has been applied
type VoiceCommandResponse struct {
	Action      Action       `json:"action"`
	Item        string       `json:"item"`
	Quantity    int          `json:"quantity"`
	Status      string       `json:"status"`
	Outcome     string       `json:"outcome"`
	Items       []ListItem   `json:"items"`
	Suggestions []Suggestion `json:"suggestions"`
	Query       *SearchQuery `json:"query,omitempty"`
	Products    []Product    `json:"products,omitempty"`
}

package models

// SourceType identifies which signal produced a suggestion
type SourceType string

const (
	SourceHistory    SourceType = "history"
	SourceSeasonal   SourceType = "seasonal"
	SourceSubstitute SourceType = "substitute"
)

// Suggestion is a proactive item recommendation. Never persisted.
type Suggestion struct {
	Item       string     `json:"item"`
	Reason     string     `json:"reason"`
	SourceType SourceType `json:"type"`
	Score      int        `json:"score"`
}

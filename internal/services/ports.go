package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/foxxcyber/shopvoice/internal/models"
)

var (
	ErrSnapshotNotFound   = errors.New("list snapshot not found")
	ErrPrimaryUnavailable = errors.New("primary parser unavailable")
	ErrMalformedResponse  = errors.New("malformed parser response")
	ErrSessionClosed      = errors.New("session closed")
	ErrSuperseded         = errors.New("utterance superseded")
	ErrDuplicateUtterance = errors.New("utterance already processed")
	ErrPipelineBusy       = errors.New("another utterance is being processed")
	ErrItemNotFound       = errors.New("list item not found")
)

// HistoryRepository stores history events and the aggregates derived from them
type HistoryRepository interface {
	RecordEvent(ctx context.Context, ev models.HistoryEvent) error
	GetAggregate(ctx context.Context, name string) (*models.HistoryAggregate, error)
	ListAggregates(ctx context.Context) (map[string]models.HistoryAggregate, error)
}

// HistoryStore hands out the history of each list owner
type HistoryStore interface {
	History(owner string) HistoryRepository
}

// SnapshotStore persists full list snapshots per owner
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot models.ListSnapshot) error
	// LatestSnapshot returns ErrSnapshotNotFound when the owner has none
	LatestSnapshot(ctx context.Context, owner string) ([]models.ListItem, error)
}

// PrimaryParser asks a remote language model to interpret an utterance.
// It returns the raw response body, which is expected to be a JSON object.
type PrimaryParser interface {
	ParseCommand(ctx context.Context, utterance, lang string) ([]byte, error)
}

// Speaker vocalizes status text; fire-and-forget
type Speaker interface {
	Speak(text string)
}

// NopSpeaker discards everything
type NopSpeaker struct{}

func (NopSpeaker) Speak(string) {}

// LogSpeaker writes status text to the log; used when no voice output is attached
type LogSpeaker struct{}

func (LogSpeaker) Speak(text string) {
	log.Debug().Str("text", text).Msg("speak")
}

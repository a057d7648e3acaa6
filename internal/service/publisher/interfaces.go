package publisher

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/ifuryst/postq/internal/models"
)

// PublishContent represents the content to be published
type PublishContent struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// PublishResult represents the result of a publish operation
type PublishResult struct {
	PublishID   string    `json:"publish_id"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Publisher sends one post to a platform. Implementations must not retry;
// a failed publish is final for the invocation.
type Publisher interface {
	GetPlatformName() string
	ValidateConfig() error
	Publish(ctx context.Context, content PublishContent) (*PublishResult, error)
}

// FromPostRecord converts a queue record to PublishContent
func FromPostRecord(rec *models.PostRecord) PublishContent {
	return PublishContent{
		Text: rec.Text,
		Metadata: map[string]string{
			"date":        rec.Date,
			"slot":        string(rec.Slot),
			"pillar":      rec.Pillar,
			"format":      rec.Format,
			"fingerprint": rec.Fingerprint,
		},
	}
}

package watch

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/schemabuild/internal/config"
	berrors "git.home.luguber.info/inful/schemabuild/internal/errors"
)

// BuildEvent is published after every watch-mode build so downstream
// consumers (the search indexer in particular) know the artifact moved.
type BuildEvent struct {
	BuildID      string    `json:"build_id"`
	TreeHash     string    `json:"tree_hash"`
	Outcome      string    `json:"outcome"`
	Declarations int       `json:"declarations"`
	DurationMS   int64     `json:"duration_ms"`
	ArtifactPath string    `json:"artifact_path"`
	Timestamp    time.Time `json:"timestamp"`
}

// Publisher sends build events over NATS.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to NATS per the configuration.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("schemabuild"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, berrors.EventPublishError(cfg.Subject, err)
	}
	slog.Info("Build event publisher connected", "url", cfg.URL, "subject", cfg.Subject)
	return &Publisher{conn: conn, subject: cfg.Subject}, nil
}

// Publish sends one build event. Failures are returned, not fatal; the
// caller decides whether a missed event matters.
func (p *Publisher) Publish(event BuildEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return berrors.EventPublishError(p.subject, err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return berrors.EventPublishError(p.subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		slog.Warn("Failed to drain NATS connection", "error", err)
	}
}

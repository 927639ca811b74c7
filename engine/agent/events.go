package agent

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/CarBotAI/carbot-mvp/pkg/natsutil"
)

// SubjectCommunication carries inter-agent Communication messages.
const SubjectCommunication = "agents.communication"

// CommsBus publishes inter-agent communications over NATS so a dashboard or
// audit consumer can follow the conversation. Best effort: a failed publish
// is logged, the conversation never stalls on the bus.
type CommsBus struct {
	nc  *nats.Conn
	log *slog.Logger
}

// NewCommsBus creates a communication publisher on the given connection.
func NewCommsBus(nc *nats.Conn, log *slog.Logger) *CommsBus {
	if log == nil {
		log = slog.Default()
	}
	return &CommsBus{nc: nc, log: log}
}

// Publish emits one communication.
func (b *CommsBus) Publish(ctx context.Context, c Communication) {
	if err := natsutil.Publish(ctx, b.nc, SubjectCommunication, c); err != nil {
		b.log.Warn("communication publish failed", "from", c.From, "to", c.To, "error", err)
	}
}

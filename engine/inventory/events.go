package inventory

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/CarBotAI/carbot-mvp/engine/domain"
	"github.com/CarBotAI/carbot-mvp/pkg/natsutil"
)

// SubjectReserved carries ReservedEvent messages.
const SubjectReserved = "inventory.reserved"

// ReservedEvent is published after a reservation has been persisted.
type ReservedEvent struct {
	EventID    string    `json:"event_id"`
	VIN        string    `json:"vin"`
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	Year       int       `json:"year"`
	Price      int       `json:"price"`
	ReservedAt time.Time `json:"reserved_at"`
}

// Events publishes inventory lifecycle events over NATS. Publishing is best
// effort: a failed publish is logged, never surfaced to the caller, because
// the reservation has already been persisted.
type Events struct {
	nc  *nats.Conn
	log *slog.Logger
}

// NewEvents creates an event publisher on the given connection.
func NewEvents(nc *nats.Conn, log *slog.Logger) *Events {
	if log == nil {
		log = slog.Default()
	}
	return &Events{nc: nc, log: log}
}

// PublishReserved emits a ReservedEvent for the car.
func (e *Events) PublishReserved(ctx context.Context, car domain.Car) {
	evt := ReservedEvent{
		EventID:    uuid.NewString(),
		VIN:        car.VIN,
		Make:       car.Make,
		Model:      car.Model,
		Year:       car.Year,
		Price:      car.Price,
		ReservedAt: time.Now().UTC(),
	}
	if err := natsutil.Publish(ctx, e.nc, SubjectReserved, evt); err != nil {
		e.log.Warn("reserved event publish failed", "vin", car.VIN, "error", err)
	}
}

package store

import (
	"context"

	"github.com/riskwire/riskwire/app/alert"
)

// AlertStore is the persistence collaborator consumed by the pipeline:
// an existence check for dedup and an insert. Implementations decide the
// schema; the pipeline only cares about these two operations.
type AlertStore interface {
	Exists(ctx context.Context, uuid string) (bool, error)
	SaveBatch(ctx context.Context, alerts []*alert.Alert) (int, error)
}

// Discard is the dry-run store: nothing exists, nothing is kept. Selecting it
// requires an explicit operator opt-in at startup.
type Discard struct{}

func (Discard) Exists(context.Context, string) (bool, error) {
	return false, nil
}

func (Discard) SaveBatch(_ context.Context, alerts []*alert.Alert) (int, error) {
	return len(alerts), nil
}

package storage

import "rangepool/internal/model"

// Journal defines an append-only sink for pool events.
type Journal interface {
	PutEventBatch(events []model.PoolEvent) error
}

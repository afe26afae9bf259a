// Package store persists plan-run history. Persistence is optional: without
// a configured database every store degrades to a no-op so the planning path
// never depends on Postgres being up.
package store

import (
	"errors"

	"github.com/anokye0712/ai-route-planner/core/db"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Stores hands out typed stores backed by the shared pool.
type Stores struct {
	db *db.DB
}

// NewStores accepts a nil database, in which case every store is a no-op.
func NewStores(database *db.DB) *Stores {
	return &Stores{db: database}
}

// Enabled reports whether a real database backs the stores.
func (s *Stores) Enabled() bool {
	return s.db != nil
}

func (s *Stores) PlanRuns() PlanRunStore {
	if s.db == nil {
		return noopPlanRunStore{}
	}
	return &planRunStore{db: s.db}
}

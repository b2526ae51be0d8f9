// Package session keeps recently scheduled plans in memory for the viewer
// service. The store is bounded; the least recently used plan is evicted
// once it is full. Nothing is written to disk.
package session

import (
	"fmt"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/joshharrison/critpath/internal/planner"
)

const DefaultSize = 128

// Summary is the listing form of a stored plan.
type Summary struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	CreatedAt       time.Time `json:"created_at"`
	TotalTasks      int       `json:"total_tasks"`
	ProjectDuration float64   `json:"project_duration"`
}

// Store is a concurrency-safe bounded store of plans keyed by plan ID.
type Store struct {
	plans *lru.Cache[string, *planner.Plan]
}

// New creates a Store holding at most size plans. A non-positive size
// selects DefaultSize.
func New(size int) (*Store, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.NewWithEvict(size, func(id string, _ *planner.Plan) {
		log.Printf("session: evicted plan %s", id)
	})
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &Store{plans: cache}, nil
}

// Put stores plan under its ID.
func (s *Store) Put(plan *planner.Plan) {
	s.plans.Add(plan.ID, plan)
}

// Get returns the plan with the given ID and marks it recently used.
func (s *Store) Get(id string) (*planner.Plan, bool) {
	return s.plans.Get(id)
}

// Delete removes a plan. It reports whether the plan was present.
func (s *Store) Delete(id string) bool {
	return s.plans.Remove(id)
}

func (s *Store) Len() int {
	return s.plans.Len()
}

// List returns summaries of every stored plan, most recently used first.
func (s *Store) List() []Summary {
	keys := s.plans.Keys()
	out := make([]Summary, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		p, ok := s.plans.Peek(keys[i])
		if !ok {
			continue
		}
		out = append(out, Summary{
			ID:              p.ID,
			Title:           p.Title,
			CreatedAt:       p.CreatedAt,
			TotalTasks:      p.TotalTasks,
			ProjectDuration: p.Report.ProjectDuration,
		})
	}
	return out
}

package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/planMaster/backend/internal/apperr"
	"github.com/planMaster/backend/internal/model"
)

// The four fixed blob keys.
const (
	keyProjects      = "projects"
	keyRequirements  = "requirements"
	keyPlans         = "plans"
	keyNotifications = "notifications"
)

// Store owns the persisted collections. Writes across the four keys are not
// atomic at the primitive level, so every load/mutate/save cycle is serialized
// through a single-writer lock; concurrent poll chains cannot overwrite each
// other's snapshots.
type Store struct {
	kv KV
	mu sync.Mutex
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

// GenerateID produces a process-unique entity ID.
func GenerateID() string {
	return uuid.NewString()
}

// LoadAll reads the four collections. A missing or unparsable blob degrades to
// an empty collection: a corrupted key must not take the whole dataset down.
func (s *Store) LoadAll(ctx context.Context) (*Collections, error) {
	c := &Collections{}
	if err := loadCollection(ctx, s.kv, keyProjects, &c.Projects); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, s.kv, keyRequirements, &c.Requirements); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, s.kv, keyPlans, &c.Plans); err != nil {
		return nil, err
	}
	if err := loadCollection(ctx, s.kv, keyNotifications, &c.Notifications); err != nil {
		return nil, err
	}
	return c, nil
}

func loadCollection[T any](ctx context.Context, kv KV, key string, dst *[]T) error {
	blob, ok, err := kv.Get(ctx, key)
	if err != nil {
		return apperr.Persistence("load "+key, err)
	}
	if !ok {
		*dst = []T{}
		return nil
	}
	if err := json.Unmarshal([]byte(blob), dst); err != nil {
		log.Printf("[store] %s blob is unparsable, recovering to empty collection: %v", key, err)
		*dst = []T{}
	}
	return nil
}

// SaveAll serializes and writes all four collections back.
func (s *Store) SaveAll(ctx context.Context, c *Collections) error {
	if err := saveCollection(ctx, s.kv, keyProjects, c.Projects); err != nil {
		return err
	}
	if err := saveCollection(ctx, s.kv, keyRequirements, c.Requirements); err != nil {
		return err
	}
	if err := saveCollection(ctx, s.kv, keyPlans, c.Plans); err != nil {
		return err
	}
	return saveCollection(ctx, s.kv, keyNotifications, c.Notifications)
}

func saveCollection[T any](ctx context.Context, kv KV, key string, src []T) error {
	if src == nil {
		src = []T{}
	}
	blob, err := json.Marshal(src)
	if err != nil {
		return apperr.Persistence("marshal "+key, err)
	}
	if err := kv.Set(ctx, key, string(blob)); err != nil {
		return apperr.Persistence("save "+key, err)
	}
	return nil
}

// Update runs fn against a fresh snapshot under the writer lock and persists
// the result if fn succeeds. All mutations in the system go through here.
func (s *Store) Update(ctx context.Context, fn func(c *Collections) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	return s.SaveAll(ctx, c)
}

// View runs fn against a fresh snapshot without persisting anything.
func (s *Store) View(ctx context.Context, fn func(c *Collections) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	return fn(c)
}

// Projects returns the materialized project view.
func (s *Store) Projects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	err := s.View(ctx, func(c *Collections) error {
		view, err := Materialize(c)
		if err != nil {
			return err
		}
		out = view
		return nil
	})
	return out, err
}

package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cjeanneret/PlanCam/internal/plan"
)

// Summary is a plan listing entry.
type Summary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Cameras int       `json:"cameras"`
	Walls   int       `json:"walls"`
}

// Store persists floor plans with their cameras and walls. Coverage
// settings travel as an opaque blob; the engine never reads them back
// from storage mid-session.
type Store interface {
	SavePlan(ctx context.Context, p *plan.Plan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*plan.Plan, error)
	ListPlans(ctx context.Context) ([]Summary, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error
	SaveCamera(ctx context.Context, planID uuid.UUID, cam *plan.Camera) error
	Close() error
}

// ErrNotFound is returned when a plan or camera does not exist.
var ErrNotFound = fmt.Errorf("store: not found")

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]*plan.Plan
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[uuid.UUID]*plan.Plan)}
}

func (m *MemoryStore) SavePlan(_ context.Context, p *plan.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	cp.Cameras = append([]plan.Camera(nil), p.Cameras...)
	cp.Walls = append([]plan.Wall(nil), p.Walls...)
	m.plans[p.ID] = &cp
	return nil
}

func (m *MemoryStore) GetPlan(_ context.Context, id uuid.UUID) (*plan.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	cp.Cameras = append([]plan.Camera(nil), p.Cameras...)
	cp.Walls = append([]plan.Wall(nil), p.Walls...)
	return &cp, nil
}

func (m *MemoryStore) ListPlans(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.plans))
	for _, p := range m.plans {
		out = append(out, Summary{ID: p.ID, Name: p.Name, Cameras: len(p.Cameras), Walls: len(p.Walls)})
	}
	return out, nil
}

func (m *MemoryStore) DeletePlan(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[id]; !ok {
		return ErrNotFound
	}
	delete(m.plans, id)
	return nil
}

func (m *MemoryStore) SaveCamera(_ context.Context, planID uuid.UUID, cam *plan.Camera) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[planID]
	if !ok {
		return ErrNotFound
	}
	for i := range p.Cameras {
		if p.Cameras[i].ID == cam.ID {
			p.Cameras[i] = *cam
			return nil
		}
	}
	p.Cameras = append(p.Cameras, *cam)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

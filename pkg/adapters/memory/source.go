package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/pipeview/pkg/cache"
	"github.com/aretw0/pipeview/pkg/domain"
)

// Approval records a call to ApproveFreight.
type Approval struct {
	Project string
	Stage   string
	Freight string
}

type project struct {
	stages     *cache.OrderedMap[domain.Stage]
	warehouses *cache.OrderedMap[domain.Warehouse]
	freight    *cache.OrderedMap[domain.Freight]
	promotions *cache.OrderedMap[domain.Promotion]
}

func newProject() *project {
	return &project{
		stages:     cache.NewOrderedMap[domain.Stage](nil),
		warehouses: cache.NewOrderedMap[domain.Warehouse](nil),
		freight:    cache.NewOrderedMap[domain.Freight](nil),
		promotions: cache.NewOrderedMap[domain.Promotion](nil),
	}
}

// Source is an in-memory API server: it implements ports.Fetcher,
// ports.Streamer and ports.Mutator, and broadcasts every change made through
// its write methods to the matching watchers.
// Safe for concurrent use.
type Source struct {
	mu       sync.RWMutex
	projects map[string]*project

	stageHub     *hub[domain.Stage]
	warehouseHub *hub[domain.Warehouse]
	promotionHub *hub[domain.Promotion]

	approvals []Approval
	refreshes []string

	// ApproveHook, when set, decides the outcome of ApproveFreight.
	ApproveHook func(project, stage, freight string) error
	// RefreshHook, when set, decides the outcome of RefreshWarehouse.
	RefreshHook func(project, warehouse string) error

	now func() time.Time
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithBuffer sets the per-watcher event buffer.
func WithBuffer(n int) SourceOption {
	return func(s *Source) {
		s.stageHub.buffer = n
		s.warehouseHub.buffer = n
		s.promotionHub.buffer = n
	}
}

// WithClock overrides the clock used to stamp new objects.
func WithClock(now func() time.Time) SourceOption {
	return func(s *Source) {
		s.now = now
	}
}

// NewSource creates an empty source.
func NewSource(opts ...SourceOption) *Source {
	s := &Source{
		projects:     make(map[string]*project),
		stageHub:     newHub[domain.Stage](64),
		warehouseHub: newHub[domain.Warehouse](64),
		promotionHub: newHub[domain.Promotion](64),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) project(name string) *project {
	p, ok := s.projects[name]
	if !ok {
		p = newProject()
		s.projects[name] = p
	}
	return p
}

func (s *Source) stamp(meta *domain.ObjectMeta) {
	if meta.UID == "" {
		meta.UID = uuid.NewString()
	}
	if meta.CreationTimestamp.IsZero() {
		meta.CreationTimestamp = s.now()
	}
}

func upsertEvent[T domain.Object](m *cache.OrderedMap[T], obj T) domain.Event[T] {
	if m.Upsert(obj) {
		return domain.Added(obj)
	}
	return domain.Modified(obj)
}

func promotionScope(project, stage string) string {
	return project + "/" + stage
}

// -- Writes --

// PutStage creates or updates a stage and notifies watchers.
func (s *Source) PutStage(projectName string, st domain.Stage) domain.Stage {
	s.stamp(&st.ObjectMeta)
	s.mu.Lock()
	ev := upsertEvent(s.project(projectName).stages, st)
	s.mu.Unlock()
	s.stageHub.publish(projectName, ev)
	return st
}

// DeleteStage removes a stage and notifies watchers.
func (s *Source) DeleteStage(projectName, name string) bool {
	s.mu.Lock()
	p := s.project(projectName)
	st, ok := p.stages.Get(name)
	if ok {
		p.stages.Delete(name)
	}
	s.mu.Unlock()
	if ok {
		s.stageHub.publish(projectName, domain.Deleted(st))
	}
	return ok
}

// PutWarehouse creates or updates a warehouse and notifies watchers.
func (s *Source) PutWarehouse(projectName string, w domain.Warehouse) domain.Warehouse {
	s.stamp(&w.ObjectMeta)
	s.mu.Lock()
	ev := upsertEvent(s.project(projectName).warehouses, w)
	s.mu.Unlock()
	s.warehouseHub.publish(projectName, ev)
	return w
}

// DeleteWarehouse removes a warehouse and notifies watchers.
func (s *Source) DeleteWarehouse(projectName, name string) bool {
	s.mu.Lock()
	p := s.project(projectName)
	w, ok := p.warehouses.Get(name)
	if ok {
		p.warehouses.Delete(name)
	}
	s.mu.Unlock()
	if ok {
		s.warehouseHub.publish(projectName, domain.Deleted(w))
	}
	return ok
}

// PutFreight stores a freight. Freight is not watched.
func (s *Source) PutFreight(projectName string, f domain.Freight) domain.Freight {
	s.stamp(&f.ObjectMeta)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project(projectName).freight.Upsert(f)
	return f
}

// PutPromotion creates or updates a promotion and notifies the watchers of
// its stage.
func (s *Source) PutPromotion(projectName string, pr domain.Promotion) domain.Promotion {
	s.stamp(&pr.ObjectMeta)
	s.mu.Lock()
	ev := upsertEvent(s.project(projectName).promotions, pr)
	s.mu.Unlock()
	s.promotionHub.publish(promotionScope(projectName, pr.Spec.Stage), ev)
	return pr
}

// DeletePromotion removes a promotion and notifies watchers.
func (s *Source) DeletePromotion(projectName, name string) bool {
	s.mu.Lock()
	p := s.project(projectName)
	pr, ok := p.promotions.Get(name)
	if ok {
		p.promotions.Delete(name)
	}
	s.mu.Unlock()
	if ok {
		s.promotionHub.publish(promotionScope(projectName, pr.Spec.Stage), domain.Deleted(pr))
	}
	return ok
}

// FailStages terminates the project's stage watches with err.
func (s *Source) FailStages(projectName string, err error) {
	s.stageHub.fail(projectName, err)
}

// FailWarehouses terminates the project's warehouse watches with err.
func (s *Source) FailWarehouses(projectName string, err error) {
	s.warehouseHub.fail(projectName, err)
}

// FailPromotions terminates the stage's promotion watches with err.
func (s *Source) FailPromotions(projectName, stage string, err error) {
	s.promotionHub.fail(promotionScope(projectName, stage), err)
}

// Watchers returns the number of open streams for a kind and scope, where
// kind is "stages", "warehouses" or "promotions".
func (s *Source) Watchers(kind, projectName, stage string) int {
	switch kind {
	case "stages":
		return s.stageHub.count(projectName)
	case "warehouses":
		return s.warehouseHub.count(projectName)
	case "promotions":
		return s.promotionHub.count(promotionScope(projectName, stage))
	default:
		return 0
	}
}

// Approvals returns the recorded ApproveFreight calls.
func (s *Source) Approvals() []Approval {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Approval(nil), s.approvals...)
}

// Refreshes returns the warehouses refreshed so far.
func (s *Source) Refreshes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.refreshes...)
}

// -- ports.Fetcher --

// ListStages returns the project's stages in creation order.
func (s *Source) ListStages(ctx context.Context, projectName string) ([]domain.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project(projectName).stages.Values(), nil
}

// ListWarehouses returns the project's warehouses in creation order.
func (s *Source) ListWarehouses(ctx context.Context, projectName string) ([]domain.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project(projectName).warehouses.Values(), nil
}

// QueryFreight returns all freight in the default group.
func (s *Source) QueryFreight(ctx context.Context, projectName string) (domain.FreightGroups, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.FreightGroups{
		domain.DefaultFreightGroup: s.project(projectName).freight.Values(),
	}, nil
}

// ListPromotions returns the promotions targeting stage.
func (s *Source) ListPromotions(ctx context.Context, projectName, stage string) ([]domain.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Promotion
	for _, pr := range s.project(projectName).promotions.Values() {
		if pr.Spec.Stage == stage {
			out = append(out, pr)
		}
	}
	return out, nil
}

// GetFreight returns a freight by name.
func (s *Source) GetFreight(ctx context.Context, projectName, name string) (domain.Freight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.project(projectName).freight.Get(name)
	if !ok {
		return domain.Freight{}, fmt.Errorf("freight %s: %w", name, domain.ErrNotFound)
	}
	return f, nil
}

// -- ports.Streamer --

// WatchStages streams the project's stage changes until ctx is done.
func (s *Source) WatchStages(ctx context.Context, projectName string) (<-chan domain.Event[domain.Stage], error) {
	return s.stageHub.subscribe(ctx, projectName), nil
}

// WatchWarehouses streams the project's warehouse changes until ctx is done.
func (s *Source) WatchWarehouses(ctx context.Context, projectName string) (<-chan domain.Event[domain.Warehouse], error) {
	return s.warehouseHub.subscribe(ctx, projectName), nil
}

// WatchPromotions streams the stage's promotion changes until ctx is done.
func (s *Source) WatchPromotions(ctx context.Context, projectName, stage string) (<-chan domain.Event[domain.Promotion], error) {
	return s.promotionHub.subscribe(ctx, promotionScope(projectName, stage)), nil
}

// -- ports.Mutator --

// ApproveFreight records the approval. The freight must exist.
func (s *Source) ApproveFreight(ctx context.Context, projectName, stage, freight string) error {
	if s.ApproveHook != nil {
		if err := s.ApproveHook(projectName, stage, freight); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.project(projectName).freight.Get(freight); !ok {
		return fmt.Errorf("freight %s: %w", freight, domain.ErrNotFound)
	}
	s.approvals = append(s.approvals, Approval{Project: projectName, Stage: stage, Freight: freight})
	return nil
}

// RefreshWarehouse records the refresh and re-announces the warehouse as
// MODIFIED, as a server would after reconciling it.
func (s *Source) RefreshWarehouse(ctx context.Context, projectName, warehouse string) error {
	if s.RefreshHook != nil {
		if err := s.RefreshHook(projectName, warehouse); err != nil {
			return err
		}
	}
	s.mu.Lock()
	w, ok := s.project(projectName).warehouses.Get(warehouse)
	if ok {
		s.refreshes = append(s.refreshes, warehouse)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("warehouse %s: %w", warehouse, domain.ErrNotFound)
	}
	s.warehouseHub.publish(projectName, domain.Modified(w))
	return nil
}

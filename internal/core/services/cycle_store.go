package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
)

type EventType string

const (
	EventStateChanged EventType = "state_changed"
	EventError        EventType = "error"
)

type Event struct {
	Type    EventType
	CycleID string
	Message string
}

// SelectionKeeper is implemented by backends that persist the selected cycle between runs.
type SelectionKeeper interface {
	CurrentCycleID() string
	SaveCurrentCycleID(cycleID string) error
}

// CycleStore holds one user's cycles in memory and keeps them in step with the gateway.
// Every mutation calls the gateway first and only patches memory once the call succeeded,
// so a failed call leaves state untouched. Gateway calls run outside the lock: two
// overlapping mutations both complete and the last response wins.
type CycleStore struct {
	gateway domain.Gateway
	userID  string
	now     func() time.Time

	mu      sync.RWMutex
	cycles  []*domain.Cycle
	current string
	lastErr string

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

func NewCycleStore(gateway domain.Gateway, userID string) *CycleStore {
	return &CycleStore{
		gateway: gateway,
		userID:  userID,
		now:     time.Now,
		subs:    make(map[int]func(Event)),
	}
}

func (s *CycleStore) UserID() string {
	return s.userID
}

// Subscribe registers fn for every event and returns a function that removes it.
func (s *CycleStore) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *CycleStore) notify(e Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// fail records a remote failure in the error slot and returns it unchanged.
func (s *CycleStore) fail(op string, err error) error {
	log.Printf("[STORE] %s failed for user %s: %v", op, s.userID, err)

	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()

	s.notify(Event{Type: EventError, Message: err.Error()})
	return err
}

func (s *CycleStore) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *CycleStore) DismissError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()

	s.notify(Event{Type: EventStateChanged})
}

func (s *CycleStore) find(cycleID string) (int, *domain.Cycle) {
	for i, c := range s.cycles {
		if c.ID == cycleID {
			return i, c
		}
	}
	return -1, nil
}

// Cycles returns deep copies of every loaded cycle in list order.
func (s *CycleStore) Cycles() []*domain.Cycle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Cycle, len(s.cycles))
	for i, c := range s.cycles {
		out[i] = c.Clone()
	}
	return out
}

func (s *CycleStore) CurrentCycleID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *CycleStore) CurrentCycle() (*domain.Cycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, c := s.find(s.current)
	if c == nil {
		return nil, domain.ErrNoCurrentCycle
	}
	return c.Clone(), nil
}

// withCurrent runs fn against the selected cycle under the read lock and returns its id.
func (s *CycleStore) withCurrent(fn func(c *domain.Cycle) error) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, c := s.find(s.current)
	if c == nil {
		return "", domain.ErrNoCurrentCycle
	}
	if fn != nil {
		if err := fn(c); err != nil {
			return c.ID, err
		}
	}
	return c.ID, nil
}

// apply patches the addressed cycle only. A cycle removed in the meantime is skipped.
func (s *CycleStore) apply(cycleID string, fn func(c *domain.Cycle)) {
	s.mu.Lock()
	if _, c := s.find(cycleID); c != nil {
		fn(c)
	}
	s.mu.Unlock()

	s.notify(Event{Type: EventStateChanged, CycleID: cycleID})
}

func (s *CycleStore) saveSelection(cycleID string) {
	keeper, ok := s.gateway.(SelectionKeeper)
	if !ok {
		return
	}
	if err := keeper.SaveCurrentCycleID(cycleID); err != nil {
		log.Printf("[STORE] Failed to persist selection %q: %v", cycleID, err)
	}
}

// FetchAll replaces every loaded cycle with a fresh full-tree read. When nothing is
// selected, or the selection is not in the fresh list, it picks the persisted selection
// if still present, else the first cycle.
func (s *CycleStore) FetchAll(ctx context.Context) error {
	cycles, err := s.gateway.ListCycles(ctx, s.userID)
	if err != nil {
		return s.fail("fetch cycles", err)
	}
	for _, c := range cycles {
		c.EnsureCollections()
	}

	s.mu.Lock()
	s.cycles = cycles
	if _, c := s.find(s.current); c == nil {
		s.current = ""
	}
	if s.current == "" {
		if keeper, ok := s.gateway.(SelectionKeeper); ok {
			if _, c := s.find(keeper.CurrentCycleID()); c != nil {
				s.current = c.ID
			}
		}
	}
	if s.current == "" && len(cycles) > 0 {
		s.current = cycles[0].ID
	}
	s.mu.Unlock()

	s.notify(Event{Type: EventStateChanged})
	return nil
}

type CreateCycleInput struct {
	Name      string
	Vision    string
	StartDate string
}

// CreateCycle persists a new cycle, prepends it and selects it.
func (s *CycleStore) CreateCycle(ctx context.Context, input CreateCycleInput) (string, error) {
	cycle, err := domain.NewCycle(s.userID, input.Name, input.Vision, input.StartDate)
	if err != nil {
		return "", err
	}

	if err := s.gateway.CreateCycle(ctx, cycle); err != nil {
		return "", s.fail("create cycle", err)
	}

	s.mu.Lock()
	s.cycles = append([]*domain.Cycle{cycle}, s.cycles...)
	s.current = cycle.ID
	s.mu.Unlock()

	s.saveSelection(cycle.ID)
	s.notify(Event{Type: EventStateChanged, CycleID: cycle.ID})
	return cycle.ID, nil
}

// SelectCycle is local only and does not check that the id is loaded.
func (s *CycleStore) SelectCycle(cycleID string) {
	s.mu.Lock()
	s.current = cycleID
	s.mu.Unlock()

	s.saveSelection(cycleID)
	s.notify(Event{Type: EventStateChanged, CycleID: cycleID})
}

func (s *CycleStore) loaded(cycleID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, c := s.find(cycleID)
	return c != nil
}

func (s *CycleStore) DeleteCycle(ctx context.Context, cycleID string) error {
	if !s.loaded(cycleID) {
		return nil
	}

	if err := s.gateway.DeleteCycle(ctx, cycleID); err != nil {
		return s.fail("delete cycle", err)
	}

	s.mu.Lock()
	if i, _ := s.find(cycleID); i >= 0 {
		s.cycles = append(s.cycles[:i:i], s.cycles[i+1:]...)
	}
	if s.current == cycleID {
		s.current = ""
		if len(s.cycles) > 0 {
			s.current = s.cycles[0].ID
		}
	}
	selected := s.current
	s.mu.Unlock()

	s.saveSelection(selected)
	s.notify(Event{Type: EventStateChanged, CycleID: cycleID})
	return nil
}

func (s *CycleStore) ArchiveCycle(ctx context.Context, cycleID string) error {
	if !s.loaded(cycleID) {
		return nil
	}

	status := domain.CycleStatusArchived
	if _, err := s.gateway.UpdateCycle(ctx, cycleID, domain.CyclePatch{Status: &status}); err != nil {
		return s.fail("archive cycle", err)
	}

	s.apply(cycleID, func(c *domain.Cycle) {
		c.Archive()
	})
	return nil
}

// UpdateCycle changes the header fields of the selected cycle.
func (s *CycleStore) UpdateCycle(ctx context.Context, patch domain.CyclePatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	cycleID, err := s.withCurrent(nil)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}

	header, err := s.gateway.UpdateCycle(ctx, cycleID, patch)
	if err != nil {
		return s.fail("update cycle", err)
	}

	s.apply(cycleID, func(c *domain.Cycle) {
		c.Name = header.Name
		c.Vision = header.Vision
		c.CurrentWeek = header.CurrentWeek
		c.Status = header.Status
	})
	return nil
}

func (s *CycleStore) SetCurrentWeek(ctx context.Context, week int) error {
	return s.UpdateCycle(ctx, domain.CyclePatch{CurrentWeek: &week})
}

// reconcile reloads one cycle after the gateway reported a toggle conflict.
func (s *CycleStore) reconcile(ctx context.Context, cycleID string) {
	fresh, err := s.gateway.GetCycle(ctx, cycleID)
	if err != nil {
		log.Printf("[STORE] Reconcile of cycle %s failed: %v", cycleID, err)
		return
	}
	fresh.EnsureCollections()

	s.mu.Lock()
	if i, _ := s.find(cycleID); i >= 0 {
		s.cycles[i] = fresh
	}
	s.mu.Unlock()
	log.Printf("[STORE] Reconciled cycle %s after a toggle conflict", cycleID)
}

// toggleFailed reconciles on conflict and records the failure either way.
func (s *CycleStore) toggleFailed(ctx context.Context, op, cycleID string, err error) error {
	if errors.Is(err, domain.ErrToggleConflict) {
		s.reconcile(ctx, cycleID)
	}
	return s.fail(op, err)
}

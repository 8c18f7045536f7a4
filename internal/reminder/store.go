package reminder

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrEmptyTitle is returned by Create when the title is empty after
// trimming whitespace. The backing service is not called.
var ErrEmptyTitle = errors.New("title must not be empty")

// Snapshot is a consistent copy of the store's observable fields.
type Snapshot struct {
	Reminders []Reminder  `json:"reminders"`
	Access    AccessState `json:"access"`
	Loading   bool        `json:"loading"`
	LastError string      `json:"last_error,omitempty"`
}

// Store owns the cached reminder list and the current access state,
// and delegates persistence to a backing Service. The cache is rebuilt
// wholesale on every successful operation; it is never patched in
// place. All field mutations are serialized behind one mutex, and
// every mutation batch emits a Snapshot to subscribers.
//
// Errors from the backing service are recorded in the LastError field
// as a human-readable message and also returned to the caller; nothing
// is retried automatically. Clearing the message between actions is
// the caller's job (see ClearError).
type Store struct {
	svc Service

	mu        sync.Mutex
	reminders []Reminder
	access    AccessState
	loading   bool
	lastErr   string

	nextSub int
	subs    map[int]func(Snapshot)
}

// New returns a Store backed by svc. The access state starts unknown
// and the cache empty until CheckAccess/RequestAccess and List run.
func New(svc Service) *Store {
	return &Store{
		svc:  svc,
		subs: make(map[int]func(Snapshot)),
	}
}

// Subscribe registers fn to receive a Snapshot after every mutation of
// the store's observable fields. The returned cancel func removes the
// subscription. fn is called outside the store's lock; it must not
// block for long.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns a copy of the observable fields.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	out := make([]Reminder, len(s.reminders))
	copy(out, s.reminders)
	return Snapshot{
		Reminders: out,
		Access:    s.access,
		Loading:   s.loading,
		LastError: s.lastErr,
	}
}

// mutate applies fn to the store's fields under the lock, then emits
// one Snapshot to every subscriber.
func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		fns = append(fns, sub)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// ClearError resets the last error message. Presentation layers call
// this before issuing the next action.
func (s *Store) ClearError() {
	s.mutate(func() { s.lastErr = "" })
}

// CheckAccess reads the current permission state from the backing
// service. It never prompts and has no effect on stored data.
func (s *Store) CheckAccess(ctx context.Context) AccessState {
	state := s.svc.AuthorizationStatus(ctx)
	s.mutate(func() { s.access = state })
	return state
}

// RequestAccess prompts the backing service for full access. On grant
// the store becomes authorized and the cache is populated with the
// incomplete reminders. On refusal the store becomes denied. If the
// request itself fails the access state is left unchanged.
func (s *Store) RequestAccess(ctx context.Context) error {
	state, err := s.svc.RequestAccess(ctx)
	if err != nil {
		serr := &ServiceError{Op: "request access", Err: err}
		s.mutate(func() { s.lastErr = serr.Error() })
		return serr
	}

	if state != AccessAuthorized {
		aerr := &AccessError{State: AccessDenied}
		s.mutate(func() {
			s.access = AccessDenied
			s.lastErr = aerr.Error()
		})
		return aerr
	}

	s.mutate(func() { s.access = AccessAuthorized })
	return s.List(ctx, FilterIncomplete)
}

// List fetches the reminders matching f, sorts them and replaces the
// cache. The loading flag is set for the duration of the fetch. On
// fetch failure the cache is replaced with an empty list and the error
// is recorded. Calling List again simply re-fetches; nothing
// accumulates.
func (s *Store) List(ctx context.Context, f Filter) error {
	s.mutate(func() { s.loading = true })

	fetched, err := s.svc.Fetch(ctx, f)
	if err != nil {
		serr := &ServiceError{Op: "fetch reminders", Err: err}
		s.mutate(func() {
			s.reminders = nil
			s.loading = false
			s.lastErr = serr.Error()
		})
		return serr
	}

	sortReminders(fetched)
	s.mutate(func() {
		s.reminders = fetched
		s.loading = false
	})
	return nil
}

// Create persists a new reminder built from d, assigned to the
// service's default list, then refreshes the cache with the incomplete
// filter. A title that is empty after trimming is rejected without
// touching the backing service. The due date is truncated to minute
// precision.
func (s *Store) Create(ctx context.Context, d Draft) error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		s.mutate(func() { s.lastErr = ErrEmptyTitle.Error() })
		return ErrEmptyTitle
	}

	list, err := s.svc.DefaultList(ctx)
	if err != nil {
		serr := &ServiceError{Op: "resolve default list", Err: err}
		s.mutate(func() { s.lastErr = serr.Error() })
		return serr
	}

	r := Reminder{
		ListID:   list.ID,
		Title:    title,
		Notes:    d.Notes,
		Priority: d.Priority,
	}
	if d.DueAt != nil {
		due := d.DueAt.Truncate(time.Minute)
		r.DueAt = &due
	}

	if err := s.svc.Save(ctx, r); err != nil {
		serr := &ServiceError{Op: "save reminder", Err: err}
		s.mutate(func() { s.lastErr = serr.Error() })
		return serr
	}

	return s.List(ctx, FilterIncomplete)
}

// ToggleComplete flips the completion flag of the identified reminder,
// persists it and refreshes the cache with the caller's filter. The
// flip happens on a copy of the cached record, so a persistence
// failure leaves the cache exactly as it was.
func (s *Store) ToggleComplete(ctx context.Context, id string, refresh Filter) error {
	r, ok := s.find(id)
	if !ok {
		serr := &ServiceError{Op: "toggle reminder", Err: errors.New("reminder " + id + " not found")}
		s.mutate(func() { s.lastErr = serr.Error() })
		return serr
	}

	r.Completed = !r.Completed
	if err := s.svc.Save(ctx, r); err != nil {
		serr := &ServiceError{Op: "save reminder", Err: err}
		s.mutate(func() { s.lastErr = serr.Error() })
		return serr
	}

	return s.List(ctx, refresh)
}

// Delete removes the identified reminder from the backing service and
// refreshes the cache with the caller's filter. An unknown id is
// reported by the service and leaves the cache unchanged.
func (s *Store) Delete(ctx context.Context, id string, refresh Filter) error {
	r, ok := s.find(id)
	if !ok {
		// Let the service report the missing record.
		r = Reminder{ID: id}
	}

	if err := s.svc.Remove(ctx, r); err != nil {
		serr := &ServiceError{Op: "remove reminder", Err: err}
		s.mutate(func() { s.lastErr = serr.Error() })
		return serr
	}

	return s.List(ctx, refresh)
}

func (s *Store) find(id string) (Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reminders {
		if r.ID == id {
			return r, true
		}
	}
	return Reminder{}, false
}

// sortReminders orders dated reminders first, ascending by due time,
// then undated reminders by title.
func sortReminders(rs []Reminder) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		switch {
		case a.DueAt != nil && b.DueAt != nil:
			return a.DueAt.Before(*b.DueAt)
		case a.DueAt != nil:
			return true
		case b.DueAt != nil:
			return false
		default:
			return a.Title < b.Title
		}
	})
}

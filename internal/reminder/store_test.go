package reminder

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeService is a scripted in-memory backing service.
type fakeService struct {
	records []Reminder
	nextID  int

	authState     AccessState
	requestResult AccessState
	requestErr    error

	fetchErr   error
	saveErr    error
	removeErr  error
	defaultErr error

	fetchCalls   int
	saveCalls    int
	removeCalls  int
	defaultCalls int
}

func newFakeService() *fakeService {
	return &fakeService{
		authState:     AccessUnknown,
		requestResult: AccessAuthorized,
	}
}

func (f *fakeService) AuthorizationStatus(context.Context) AccessState {
	return f.authState
}

func (f *fakeService) RequestAccess(context.Context) (AccessState, error) {
	if f.requestErr != nil {
		return AccessUnknown, f.requestErr
	}
	f.authState = f.requestResult
	return f.requestResult, nil
}

func (f *fakeService) Fetch(_ context.Context, filter Filter) ([]Reminder, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	var out []Reminder
	for _, r := range f.records {
		if filter == FilterIncomplete && r.Completed {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeService) Save(_ context.Context, r Reminder) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}

	if r.ID == "" {
		f.nextID++
		r.ID = fmt.Sprintf("r-%d", f.nextID)
		f.records = append(f.records, r)
		return nil
	}

	for i := range f.records {
		if f.records[i].ID == r.ID {
			f.records[i] = r
			return nil
		}
	}
	return fmt.Errorf("reminder %s not found", r.ID)
}

func (f *fakeService) Remove(_ context.Context, r Reminder) error {
	f.removeCalls++
	if f.removeErr != nil {
		return f.removeErr
	}

	for i := range f.records {
		if f.records[i].ID == r.ID {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("reminder %s not found", r.ID)
}

func (f *fakeService) DefaultList(context.Context) (ListRef, error) {
	f.defaultCalls++
	if f.defaultErr != nil {
		return ListRef{}, f.defaultErr
	}
	return ListRef{ID: "list-1", Name: "Reminders"}, nil
}

// seed stores a record directly, bypassing the Store.
func (f *fakeService) seed(r Reminder) {
	f.nextID++
	if r.ID == "" {
		r.ID = fmt.Sprintf("r-%d", f.nextID)
	}
	f.records = append(f.records, r)
}

func datePtr(t time.Time) *time.Time { return &t }

func titles(rs []Reminder) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Title
	}
	return out
}

func TestListSortsDatedFirstThenByTitle(t *testing.T) {
	svc := newFakeService()
	svc.seed(Reminder{Title: "B", DueAt: datePtr(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))})
	svc.seed(Reminder{Title: "A"})
	svc.seed(Reminder{Title: "C", DueAt: datePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))})

	store := New(svc)
	if err := store.List(context.Background(), FilterAll); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	got := titles(store.Snapshot().Reminders)
	want := []string{"C", "B", "A"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sort order = %v, want %v", got, want)
		}
	}
}

func TestListUndatedSortByTitle(t *testing.T) {
	svc := newFakeService()
	svc.seed(Reminder{Title: "zebra"})
	svc.seed(Reminder{Title: ""})
	svc.seed(Reminder{Title: "apple"})

	store := New(svc)
	if err := store.List(context.Background(), FilterAll); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	got := titles(store.Snapshot().Reminders)
	want := []string{"", "apple", "zebra"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sort order = %v, want %v", got, want)
		}
	}
}

func TestListIsIdempotent(t *testing.T) {
	svc := newFakeService()
	svc.seed(Reminder{Title: "once"})

	store := New(svc)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := store.List(ctx, FilterAll); err != nil {
			t.Fatalf("List failed: %v", err)
		}
	}

	if n := len(store.Snapshot().Reminders); n != 1 {
		t.Fatalf("cache has %d reminders after repeated List, want 1", n)
	}
}

func TestListFailureEmptiesCacheAndClearsLoading(t *testing.T) {
	svc := newFakeService()
	svc.seed(Reminder{Title: "kept?"})

	store := New(svc)
	ctx := context.Background()
	if err := store.List(ctx, FilterAll); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	svc.fetchErr = errors.New("disk on fire")
	err := store.List(ctx, FilterAll)
	if err == nil {
		t.Fatal("List succeeded despite fetch failure")
	}

	var serr *ServiceError
	if !errors.As(err, &serr) {
		t.Fatalf("error %v is not a ServiceError", err)
	}

	snap := store.Snapshot()
	if len(snap.Reminders) != 0 {
		t.Errorf("cache not emptied on fetch failure: %v", titles(snap.Reminders))
	}
	if snap.Loading {
		t.Error("loading flag still set after failed List")
	}
	if snap.LastError == "" {
		t.Error("LastError not recorded on fetch failure")
	}
}

func TestCreateRejectsWhitespaceTitle(t *testing.T) {
	svc := newFakeService()
	store := New(svc)

	err := store.Create(context.Background(), Draft{Title: "   \t"})
	if !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("Create returned %v, want ErrEmptyTitle", err)
	}

	if svc.saveCalls != 0 || svc.defaultCalls != 0 || svc.fetchCalls != 0 {
		t.Errorf("backing service was called for an empty title: save=%d default=%d fetch=%d",
			svc.saveCalls, svc.defaultCalls, svc.fetchCalls)
	}
	if store.Snapshot().LastError == "" {
		t.Error("LastError not recorded for empty title")
	}
}

func TestCreateAssignsDefaultListAndRefreshes(t *testing.T) {
	svc := newFakeService()
	store := New(svc)
	ctx := context.Background()

	due := time.Date(2024, 3, 1, 9, 0, 42, 0, time.UTC)
	err := store.Create(ctx, Draft{Title: "  Walk dog  ", DueAt: &due, Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.Reminders) != 1 {
		t.Fatalf("cache has %d reminders, want 1", len(snap.Reminders))
	}

	r := snap.Reminders[0]
	if r.Title != "Walk dog" {
		t.Errorf("title = %q, want trimmed %q", r.Title, "Walk dog")
	}
	if r.ID == "" {
		t.Error("service did not assign an ID")
	}
	if r.ListID != "list-1" {
		t.Errorf("list = %q, want default list", r.ListID)
	}
	if r.DueAt == nil || r.DueAt.Second() != 0 || r.DueAt.Nanosecond() != 0 {
		t.Errorf("due %v not truncated to minute precision", r.DueAt)
	}
}

func TestCreateScenario(t *testing.T) {
	// Authorized store showing one undated reminder; creating a dated
	// one must put the dated reminder first.
	svc := newFakeService()
	svc.authState = AccessAuthorized
	svc.seed(Reminder{Title: "Buy milk"})

	store := New(svc)
	ctx := context.Background()
	if err := store.List(ctx, FilterIncomplete); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	due := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	err := store.Create(ctx, Draft{Title: "Walk dog", DueAt: &due, Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got := titles(store.Snapshot().Reminders)
	want := []string{"Walk dog", "Buy milk"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("cache = %v, want %v", got, want)
	}
}

func TestCreateSaveFailureLeavesCache(t *testing.T) {
	svc := newFakeService()
	svc.seed(Reminder{Title: "existing"})

	store := New(svc)
	ctx := context.Background()
	if err := store.List(ctx, FilterAll); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	fetchesBefore := svc.fetchCalls
	svc.saveErr = errors.New("quota exceeded")

	err := store.Create(ctx, Draft{Title: "doomed"})
	if err == nil {
		t.Fatal("Create succeeded despite save failure")
	}

	snap := store.Snapshot()
	if got := titles(snap.Reminders); len(got) != 1 || got[0] != "existing" {
		t.Errorf("cache changed on failed create: %v", got)
	}
	if svc.fetchCalls != fetchesBefore {
		t.Error("cache refresh ran despite failed create")
	}
	if snap.LastError == "" {
		t.Error("LastError not recorded")
	}
}

func TestToggleCompletePersistsAndRefreshes(t *testing.T) {
	svc := newFakeService()
	svc.seed(Reminder{ID: "r-1", Title: "task"})

	store := New(svc)
	ctx := context.Background()
	if err := store.List(ctx, FilterAll); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if err := store.ToggleComplete(ctx, "r-1", FilterAll); err != nil {
		t.Fatalf("ToggleComplete failed: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.Reminders) != 1 || !snap.Reminders[0].Completed {
		t.Fatalf("reminder not completed after toggle: %+v", snap.Reminders)
	}

	// Toggling again flips it back.
	if err := store.ToggleComplete(ctx, "r-1", FilterAll); err != nil {
		t.Fatalf("second ToggleComplete failed: %v", err)
	}
	if store.Snapshot().Reminders[0].Completed {
		t.Error("reminder still completed after second toggle")
	}
}

func TestToggleCompleteRespectsCallerFilter(t *testing.T) {
	svc := newFakeService()
	svc.seed(Reminder{ID: "r-1", Title: "task"})

	store := New(svc)
	ctx := context.Background()
	if err := store.List(ctx, FilterIncomplete); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if err := store.ToggleComplete(ctx, "r-1", FilterIncomplete); err != nil {
		t.Fatalf("ToggleComplete failed: %v", err)
	}

	// With the incomplete filter the completed record drops out.
	if n := len(store.Snapshot().Reminders); n != 0 {
		t.Fatalf("cache has %d reminders under incomplete filter, want 0", n)
	}
}

func TestToggleCompleteFailureLeavesFlag(t *testing.T) {
	svc := newFakeService()
	svc.seed(Reminder{ID: "r-1", Title: "task"})

	store := New(svc)
	ctx := context.Background()
	if err := store.List(ctx, FilterAll); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	svc.saveErr = errors.New("write failed")
	err := store.ToggleComplete(ctx, "r-1", FilterAll)
	if err == nil {
		t.Fatal("ToggleComplete succeeded despite save failure")
	}

	snap := store.Snapshot()
	if snap.Reminders[0].Completed {
		t.Error("completion flag left flipped after failed persistence")
	}
	if svc.records[0].Completed {
		t.Error("backing record mutated despite save failure")
	}
	if snap.LastError == "" {
		t.Error("LastError not recorded")
	}
}

func TestToggleCompleteUnknownID(t *testing.T) {
	svc := newFakeService()
	store := New(svc)

	err := store.ToggleComplete(context.Background(), "ghost", FilterAll)
	if err == nil {
		t.Fatal("ToggleComplete succeeded for unknown id")
	}
	if svc.saveCalls != 0 {
		t.Error("Save called for unknown id")
	}
}

func TestDeleteRemovesAndRefreshes(t *testing.T) {
	svc := newFakeService()
	svc.seed(Reminder{ID: "r-1", Title: "gone soon"})

	store := New(svc)
	ctx := context.Background()
	if err := store.List(ctx, FilterAll); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if err := store.Delete(ctx, "r-1", FilterAll); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if n := len(store.Snapshot().Reminders); n != 0 {
		t.Fatalf("cache has %d reminders after delete, want 0", n)
	}
	if len(svc.records) != 0 {
		t.Error("backing record not removed")
	}
}

func TestDeleteUnknownIDSurfacesServiceError(t *testing.T) {
	svc := newFakeService()
	svc.seed(Reminder{ID: "r-1", Title: "stays"})

	store := New(svc)
	ctx := context.Background()
	if err := store.List(ctx, FilterAll); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	err := store.Delete(ctx, "ghost", FilterAll)
	if err == nil {
		t.Fatal("Delete succeeded for unknown id")
	}

	var serr *ServiceError
	if !errors.As(err, &serr) {
		t.Fatalf("error %v is not a ServiceError", err)
	}

	snap := store.Snapshot()
	if got := titles(snap.Reminders); len(got) != 1 || got[0] != "stays" {
		t.Errorf("cache changed on failed delete: %v", got)
	}
	if snap.LastError == "" {
		t.Error("LastError not recorded")
	}
}

func TestCheckAccessReadsServiceState(t *testing.T) {
	svc := newFakeService()
	svc.authState = AccessDenied

	store := New(svc)
	if got := store.CheckAccess(context.Background()); got != AccessDenied {
		t.Fatalf("CheckAccess = %s, want denied", got)
	}
	if store.Snapshot().Access != AccessDenied {
		t.Error("access field not updated")
	}
	if svc.fetchCalls != 0 {
		t.Error("CheckAccess touched stored data")
	}
}

func TestRequestAccessGrantLoadsCache(t *testing.T) {
	svc := newFakeService()
	svc.seed(Reminder{Title: "pending"})
	svc.seed(Reminder{Title: "done", Completed: true})

	store := New(svc)
	if err := store.RequestAccess(context.Background()); err != nil {
		t.Fatalf("RequestAccess failed: %v", err)
	}

	snap := store.Snapshot()
	if snap.Access != AccessAuthorized {
		t.Fatalf("access = %s, want authorized", snap.Access)
	}
	// The grant path loads the incomplete reminders only.
	if got := titles(snap.Reminders); len(got) != 1 || got[0] != "pending" {
		t.Errorf("cache = %v, want [pending]", got)
	}
}

func TestRequestAccessRefusal(t *testing.T) {
	svc := newFakeService()
	svc.requestResult = AccessDenied
	svc.seed(Reminder{Title: "hidden"})

	store := New(svc)
	err := store.RequestAccess(context.Background())
	if err == nil {
		t.Fatal("RequestAccess succeeded despite refusal")
	}

	var aerr *AccessError
	if !errors.As(err, &aerr) {
		t.Fatalf("error %v is not an AccessError", err)
	}

	snap := store.Snapshot()
	if snap.Access != AccessDenied {
		t.Errorf("access = %s, want denied", snap.Access)
	}
	if snap.LastError == "" {
		t.Error("LastError not recorded on refusal")
	}
	if len(snap.Reminders) != 0 || svc.fetchCalls != 0 {
		t.Error("cache touched on refusal")
	}
}

func TestRequestAccessFailureLeavesState(t *testing.T) {
	svc := newFakeService()
	svc.requestErr = errors.New("prompt service unavailable")

	store := New(svc)
	err := store.RequestAccess(context.Background())
	if err == nil {
		t.Fatal("RequestAccess succeeded despite request failure")
	}

	snap := store.Snapshot()
	if snap.Access != AccessUnknown {
		t.Errorf("access = %s after request failure, want unchanged unknown", snap.Access)
	}
	if snap.LastError == "" {
		t.Error("LastError not recorded on request failure")
	}
}

func TestClearError(t *testing.T) {
	svc := newFakeService()
	store := New(svc)

	_ = store.Create(context.Background(), Draft{Title: " "})
	if store.Snapshot().LastError == "" {
		t.Fatal("expected an error message to clear")
	}

	store.ClearError()
	if got := store.Snapshot().LastError; got != "" {
		t.Errorf("LastError = %q after ClearError", got)
	}
}

func TestSubscribeObservesLoading(t *testing.T) {
	svc := newFakeService()
	svc.seed(Reminder{Title: "task"})

	store := New(svc)

	var loading []bool
	cancel := store.Subscribe(func(snap Snapshot) {
		loading = append(loading, snap.Loading)
	})
	defer cancel()

	if err := store.List(context.Background(), FilterAll); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(loading) < 2 || !loading[0] || loading[len(loading)-1] {
		t.Fatalf("loading transitions = %v, want true then false", loading)
	}
}

func TestSubscribeCancel(t *testing.T) {
	svc := newFakeService()
	store := New(svc)

	calls := 0
	cancel := store.Subscribe(func(Snapshot) { calls++ })
	cancel()

	store.ClearError()
	if calls != 0 {
		t.Errorf("subscriber called %d times after cancel", calls)
	}
}

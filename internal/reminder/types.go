package reminder

import "time"

// Priority is the urgency of a reminder.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

// Canonical raw values written to the backing service, which uses a
// 0-9 numeric scale.
const (
	rawNone   = 0
	rawHigh   = 1
	rawMedium = 5
	rawLow    = 9
)

// PriorityFromRaw maps a backing-service raw value (0-9) to a Priority:
// 0 is none, 1-4 high, 5 medium, 6-9 low. Values outside the scale are
// treated as none.
func PriorityFromRaw(raw int) Priority {
	switch {
	case raw >= 1 && raw <= 4:
		return PriorityHigh
	case raw == 5:
		return PriorityMedium
	case raw >= 6 && raw <= 9:
		return PriorityLow
	default:
		return PriorityNone
	}
}

// Raw returns the canonical backing-service value for the priority.
// The raw scale is lossy: only the four canonical values round-trip.
func (p Priority) Raw() int {
	switch p {
	case PriorityHigh:
		return rawHigh
	case PriorityMedium:
		return rawMedium
	case PriorityLow:
		return rawLow
	default:
		return rawNone
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return "none"
	}
}

// ParsePriority parses one of "none", "low", "medium", "high". An empty
// string parses as none.
func ParsePriority(s string) (Priority, bool) {
	switch s {
	case "", "none":
		return PriorityNone, true
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	default:
		return PriorityNone, false
	}
}

// Filter selects which reminders a fetch returns.
type Filter int

const (
	FilterIncomplete Filter = iota
	FilterAll
)

func (f Filter) String() string {
	if f == FilterAll {
		return "all"
	}
	return "incomplete"
}

// AccessState is the permission state of the backing service.
type AccessState int

const (
	AccessUnknown AccessState = iota
	AccessAuthorized
	AccessDenied
)

func (a AccessState) String() string {
	switch a {
	case AccessAuthorized:
		return "authorized"
	case AccessDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// ListRef identifies a reminder list in the backing service.
type ListRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Reminder is a single task item. The ID is assigned by the backing
// service at creation and never changes afterwards.
type Reminder struct {
	ID        string     `json:"id"`
	ListID    string     `json:"list_id,omitempty"`
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	Priority  Priority   `json:"priority"`
	Completed bool       `json:"completed"`
}

// Draft holds the caller-supplied fields for a new reminder.
type Draft struct {
	Title    string
	Notes    string
	DueAt    *time.Time
	Priority Priority
}

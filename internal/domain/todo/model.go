package todo

import "time"

// Todo is a short text item owned by a single user.
type Todo struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is the owned list as of a refresh version. Versions only order
// snapshots that share an epoch.
type Snapshot struct {
	Epoch   string `json:"epoch"`
	Version uint64 `json:"version"`
	Todos   []Todo `json:"todos"`
}

// Outcome is the internal result of a mutation. It feeds logs and tests only;
// transports collapse every value to the same empty response.
type Outcome int

const (
	// Applied means the store changed.
	Applied Outcome = iota
	// NotApplicable covers unauthenticated callers, invalid input and
	// records that are missing or owned by someone else.
	NotApplicable
	// Failed means the store could not be reached or returned an error.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case NotApplicable:
		return "not_applicable"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

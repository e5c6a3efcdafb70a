package models

import "time"

// Виды поиска и исходы — в том виде, в котором они пишутся в журнал.
const (
	SearchKindOrderID = "ORDER_ID"
	SearchKindAWB     = "AWB"
	SearchKindMixed   = "MIXED"
	SearchKindUnknown = "UNKNOWN"
)

const (
	OutcomeSuccess = "success"
	OutcomePending = "pending"
	OutcomeFailed  = "failed"
	OutcomeError   = "error"
)

// LookupRequest is what the caller actually supplied, after normalization.
// At most one of AWB and (OrderID, Mobile) may be present.
type LookupRequest struct {
	OrderID string
	Mobile  string
	AWB     string
}

// Order is the slice of a WareIQ order row this system cares about.
// Fetched per request, never persisted.
type Order struct {
	OrderID       string
	OrderDate     string
	CustomerPhone string
	AWB           string
}

// GlobalStats is the singleton aggregate. Version drives the optimistic
// read-modify-write; both counters are monotonically non-decreasing.
type GlobalStats struct {
	TotalLookups   int64     `json:"total_lookups"`
	UniqueVisitors int64     `json:"unique_visitors"`
	LastActivity   time.Time `json:"last_activity"`
	Version        int64     `json:"-"`
}

type VisitorProfile struct {
	VisitorID     string
	FirstSeen     time.Time
	LastSeen      time.Time
	VisitCount    int64
	LatestCity    string
	LatestCountry string
	Device        string
}

// LookupEvent is one append-only journal row per lookup attempt.
// Raw IPs never land here; only the derived visitor id does.
type LookupEvent struct {
	ID          uint64
	EventTime   time.Time
	VisitorID   string
	SearchKind  string
	SearchValue string
	Outcome     string
	ErrorDetail string
	IsMobile    bool
	UserAgent   string
	City        string
	Country     string
	CreatedAt   time.Time
}

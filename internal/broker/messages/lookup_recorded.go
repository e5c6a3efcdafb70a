package messages

import "time"

// LookupRecorded carries one fully-derived lookup event from the API process
// to the analytics-worker in detached mode. The worker applies it through the
// same aggregation transaction as the sync path, so both modes converge.
type LookupRecorded struct {
	EventTime time.Time `json:"event_time"`
	VisitorID string    `json:"visitor_id"`

	SearchKind  string `json:"search_kind"`
	SearchValue string `json:"search_value,omitempty"`

	Outcome     string `json:"outcome"`
	ErrorDetail string `json:"error_detail,omitempty"`

	IsMobile  bool   `json:"is_mobile"`
	UserAgent string `json:"user_agent,omitempty"`
	City      string `json:"city,omitempty"`
	Country   string `json:"country,omitempty"`
}

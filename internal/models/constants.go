package models

// Booking lifecycle states. A booking is created WAITING and moves to
// APPROVED or REJECTED exactly once by the item owner's decision.
// CANCELED is reachable only via an explicit booker cancellation.
// All three outcomes are terminal.
const (
	StatusWaiting  = "WAITING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusCanceled = "CANCELED"
)

// StateFilter selects which bookings a listing returns. ALL/CURRENT/PAST/
// FUTURE are time-window filters independent of status; WAITING/REJECTED
// test status equality.
type StateFilter string

const (
	FilterAll      StateFilter = "ALL"
	FilterCurrent  StateFilter = "CURRENT"
	FilterPast     StateFilter = "PAST"
	FilterFuture   StateFilter = "FUTURE"
	FilterWaiting  StateFilter = "WAITING"
	FilterRejected StateFilter = "REJECTED"
)

const (
	// DefaultPageSize is the page size for listings when none is given.
	DefaultPageSize = 10

	// WorkerQueueSize is the export worker queue capacity.
	WorkerQueueSize = 1000

	// DefaultRateLimitRPS is the HTTP API request budget per second.
	DefaultRateLimitRPS = 20

	// SearchCacheTTLSeconds is how long cached search results stay valid.
	SearchCacheTTLSeconds = 5 * 60
)

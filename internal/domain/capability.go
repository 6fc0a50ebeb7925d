package domain

import "time"

// Capability names a rate-limited external action.
type Capability string

const (
	CapabilityPost      Capability = "post"
	CapabilityReply     Capability = "reply"
	CapabilityLike      Capability = "like"
	CapabilityRepost    Capability = "repost"
	CapabilityCrosspost Capability = "crosspost"
	CapabilitySearch    Capability = "search"
	CapabilityGenerate  Capability = "generate"
)

// WindowPolicy defines the fixed-window budget for a capability.
type WindowPolicy struct {
	Limit  int
	Window time.Duration
}

// DefaultWindowPolicies returns the platform rate limits per capability.
// Limits mirror the documented X API tiers plus the self-imposed weekly
// crosspost cap.
func DefaultWindowPolicies() map[Capability]WindowPolicy {
	return map[Capability]WindowPolicy{
		CapabilityPost:      {Limit: 50, Window: time.Hour},
		CapabilityReply:     {Limit: 50, Window: time.Hour},
		CapabilityLike:      {Limit: 900, Window: 15 * time.Minute},
		CapabilityRepost:    {Limit: 300, Window: 3 * time.Hour},
		CapabilityCrosspost: {Limit: 10, Window: 7 * 24 * time.Hour},
		CapabilitySearch:    {Limit: 450, Window: 15 * time.Minute},
		CapabilityGenerate:  {Limit: 100, Window: time.Hour},
	}
}

// Admission is the result of a quota reservation attempt. When Admitted is
// false, RetryAfter holds the time remaining until the window resets.
type Admission struct {
	Admitted   bool
	RetryAfter time.Duration
}

// CapacityStatus is a read-only view of one capability's current budget,
// exposed on the status surface.
type CapacityStatus struct {
	Capability Capability    `json:"capability"`
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	ResetsIn   time.Duration `json:"resets_in"`
}

// QuotaTracker admits or denies capability usage against per-capability
// fixed windows. Implementations must serialize counter updates so that no
// two concurrent callers are both admitted past the remaining budget.
type QuotaTracker interface {
	// CheckAndReserve reserves cost units of the capability's current window.
	CheckAndReserve(capability Capability, cost int) (Admission, error)
	// Release returns previously reserved units that were never executed.
	Release(capability Capability, cost int)
	// Snapshot reports the remaining budget per capability.
	Snapshot() []CapacityStatus
}

package policy

import (
	"math/rand"
	"sync"

	"github.com/orourkera/getrucky-bot/internal/domain"
)

// Options holds the policy knobs.
type Options struct {
	// LikeProbability is the Bernoulli parameter for the like draw.
	LikeProbability float64
	// RepostAllowlist names accounts always eligible for repost.
	RepostAllowlist []string
	// MinFollowers makes accounts above this follower count repost-eligible.
	MinFollowers int
	// MinCrosspostLikes is the like-count floor for crosspost eligibility.
	MinCrosspostLikes int
}

// Engine is the pure decision function over engagement candidates. The
// random source is injected so decisions are deterministic in tests.
//
// Admission order is uniform for all three actions: the free eligibility
// check runs first, then quota is reserved exactly once. A reservation for
// an action that is later not executed must be returned via
// QuotaTracker.Release by the caller.
type Engine struct {
	mu        sync.Mutex
	rnd       *rand.Rand
	quota     domain.QuotaTracker
	opts      Options
	allowlist map[string]struct{}
}

func NewEngine(quota domain.QuotaTracker, opts Options, rnd *rand.Rand) *Engine {
	allowlist := make(map[string]struct{}, len(opts.RepostAllowlist))
	for _, handle := range opts.RepostAllowlist {
		allowlist[handle] = struct{}{}
	}
	return &Engine{rnd: rnd, quota: quota, opts: opts, allowlist: allowlist}
}

// Decide evaluates one candidate. The three checks are independent; any
// subset of actions may be approved.
func (e *Engine) Decide(candidate domain.EngagementCandidate) domain.EngagementDecision {
	return domain.EngagementDecision{
		Like:      e.decideLike(),
		Repost:    e.decideRepost(candidate),
		Crosspost: e.decideCrosspost(candidate),
	}
}

// decideLike draws first, then reserves quota: a failed draw must not burn
// like budget. Quota denial forces false regardless of the draw.
func (e *Engine) decideLike() bool {
	e.mu.Lock()
	draw := e.rnd.Float64()
	e.mu.Unlock()

	if draw >= e.opts.LikeProbability {
		return false
	}
	adm, err := e.quota.CheckAndReserve(domain.CapabilityLike, 1)
	return err == nil && adm.Admitted
}

func (e *Engine) decideRepost(candidate domain.EngagementCandidate) bool {
	_, allowed := e.allowlist[candidate.Author]
	if !allowed && candidate.AuthorFollowers <= e.opts.MinFollowers {
		return false
	}
	adm, err := e.quota.CheckAndReserve(domain.CapabilityRepost, 1)
	return err == nil && adm.Admitted
}

func (e *Engine) decideCrosspost(candidate domain.EngagementCandidate) bool {
	if candidate.LikeCount <= e.opts.MinCrosspostLikes {
		return false
	}
	adm, err := e.quota.CheckAndReserve(domain.CapabilityCrosspost, 1)
	return err == nil && adm.Admitted
}

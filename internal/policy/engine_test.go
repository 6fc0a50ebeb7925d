package policy

import (
	"math/rand"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orourkera/getrucky-bot/internal/domain"
	"github.com/orourkera/getrucky-bot/internal/quota"
)

func newTestQuota(t *testing.T, policies map[domain.Capability]domain.WindowPolicy) *quota.Tracker {
	t.Helper()
	tracker, err := quota.New(policies, clockwork.NewFakeClock())
	require.NoError(t, err)
	return tracker
}

func defaultTestPolicies() map[domain.Capability]domain.WindowPolicy {
	return map[domain.Capability]domain.WindowPolicy{
		domain.CapabilityLike:      {Limit: 100, Window: 15 * time.Minute},
		domain.CapabilityRepost:    {Limit: 100, Window: 3 * time.Hour},
		domain.CapabilityCrosspost: {Limit: 10, Window: 7 * 24 * time.Hour},
	}
}

func defaultTestOptions() Options {
	return Options{
		LikeProbability:   0.9,
		RepostAllowlist:   []string{"GaryBrecka", "PeterAttiaMD"},
		MinFollowers:      1000,
		MinCrosspostLikes: 5,
	}
}

func TestDecide_RepostAboveFollowerThreshold(t *testing.T) {
	tracker := newTestQuota(t, defaultTestPolicies())
	engine := NewEngine(tracker, defaultTestOptions(), rand.New(rand.NewSource(1)))

	decision := engine.Decide(domain.EngagementCandidate{
		Author:          "nobody_special",
		AuthorFollowers: 1500,
	})
	assert.True(t, decision.Repost)
}

func TestDecide_RepostBelowThresholdNotAllowlisted(t *testing.T) {
	tracker := newTestQuota(t, defaultTestPolicies())
	engine := NewEngine(tracker, defaultTestOptions(), rand.New(rand.NewSource(1)))

	decision := engine.Decide(domain.EngagementCandidate{
		Author:          "nobody_special",
		AuthorFollowers: 999,
	})
	assert.False(t, decision.Repost)
}

func TestDecide_RepostAllowlistedIgnoresFollowers(t *testing.T) {
	tracker := newTestQuota(t, defaultTestPolicies())
	engine := NewEngine(tracker, defaultTestOptions(), rand.New(rand.NewSource(1)))

	decision := engine.Decide(domain.EngagementCandidate{
		Author:          "GaryBrecka",
		AuthorFollowers: 3,
	})
	assert.True(t, decision.Repost)
}

func TestDecide_RepostQuotaDeniedForcesFalse(t *testing.T) {
	policies := defaultTestPolicies()
	policies[domain.CapabilityRepost] = domain.WindowPolicy{Limit: 1, Window: 3 * time.Hour}
	tracker := newTestQuota(t, policies)

	adm, err := tracker.CheckAndReserve(domain.CapabilityRepost, 1)
	require.NoError(t, err)
	require.True(t, adm.Admitted)

	engine := NewEngine(tracker, defaultTestOptions(), rand.New(rand.NewSource(1)))
	decision := engine.Decide(domain.EngagementCandidate{
		Author:          "nobody_special",
		AuthorFollowers: 1500,
	})
	assert.False(t, decision.Repost, "quota denial must force repost false despite eligibility")
}

func TestDecide_LikeProbabilityZeroNeverLikes(t *testing.T) {
	tracker := newTestQuota(t, defaultTestPolicies())
	opts := defaultTestOptions()
	opts.LikeProbability = 0
	engine := NewEngine(tracker, opts, rand.New(rand.NewSource(1)))

	for i := 0; i < 50; i++ {
		assert.False(t, engine.Decide(domain.EngagementCandidate{}).Like)
	}

	// A failed draw must not consume like budget.
	for _, st := range tracker.Snapshot() {
		if st.Capability == domain.CapabilityLike {
			assert.Equal(t, st.Limit, st.Remaining)
		}
	}
}

func TestDecide_LikeProbabilityOneGatedByQuota(t *testing.T) {
	policies := defaultTestPolicies()
	policies[domain.CapabilityLike] = domain.WindowPolicy{Limit: 3, Window: 15 * time.Minute}
	tracker := newTestQuota(t, policies)

	opts := defaultTestOptions()
	opts.LikeProbability = 1
	engine := NewEngine(tracker, opts, rand.New(rand.NewSource(1)))

	liked := 0
	for i := 0; i < 10; i++ {
		if engine.Decide(domain.EngagementCandidate{}).Like {
			liked++
		}
	}
	assert.Equal(t, 3, liked, "likes past the window budget must be denied")
}

func TestDecide_LikeConvergesToProbability(t *testing.T) {
	policies := defaultTestPolicies()
	policies[domain.CapabilityLike] = domain.WindowPolicy{Limit: 100000, Window: time.Hour}
	tracker := newTestQuota(t, policies)
	engine := NewEngine(tracker, defaultTestOptions(), rand.New(rand.NewSource(99)))

	const draws = 10000
	liked := 0
	for i := 0; i < draws; i++ {
		if engine.Decide(domain.EngagementCandidate{}).Like {
			liked++
		}
	}
	assert.InDelta(t, 0.9, float64(liked)/draws, 0.02)
}

func TestDecide_CrosspostRequiresLikeCountAndWeeklyBudget(t *testing.T) {
	policies := defaultTestPolicies()
	policies[domain.CapabilityCrosspost] = domain.WindowPolicy{Limit: 2, Window: 7 * 24 * time.Hour}
	tracker := newTestQuota(t, policies)
	engine := NewEngine(tracker, defaultTestOptions(), rand.New(rand.NewSource(1)))

	hot := domain.EngagementCandidate{LikeCount: 50}
	cold := domain.EngagementCandidate{LikeCount: 2}

	assert.False(t, engine.Decide(cold).Crosspost, "below the like-count floor")
	assert.True(t, engine.Decide(hot).Crosspost)
	assert.True(t, engine.Decide(hot).Crosspost)
	assert.False(t, engine.Decide(hot).Crosspost,
		"weekly cap exhausted: eligibility alone must not grant a crosspost")
}

func TestDecide_CrosspostReleaseRestoresBudget(t *testing.T) {
	policies := defaultTestPolicies()
	policies[domain.CapabilityCrosspost] = domain.WindowPolicy{Limit: 1, Window: 7 * 24 * time.Hour}
	tracker := newTestQuota(t, policies)
	engine := NewEngine(tracker, defaultTestOptions(), rand.New(rand.NewSource(1)))

	hot := domain.EngagementCandidate{LikeCount: 50}
	require.True(t, engine.Decide(hot).Crosspost)

	// The crosspost was never executed; the caller returns the unit.
	tracker.Release(domain.CapabilityCrosspost, 1)
	assert.True(t, engine.Decide(hot).Crosspost,
		"released budget must be available to the next candidate")
}

func TestDecide_ActionsAreIndependent(t *testing.T) {
	tracker := newTestQuota(t, defaultTestPolicies())
	opts := defaultTestOptions()
	opts.LikeProbability = 1
	engine := NewEngine(tracker, opts, rand.New(rand.NewSource(1)))

	decision := engine.Decide(domain.EngagementCandidate{
		Author:          "small_account",
		AuthorFollowers: 10,
		LikeCount:       100,
	})
	assert.True(t, decision.Like)
	assert.False(t, decision.Repost)
	assert.True(t, decision.Crosspost)
}

package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orourkera/getrucky-bot/internal/content"
	"github.com/orourkera/getrucky-bot/internal/domain"
	"github.com/orourkera/getrucky-bot/internal/gencache"
	"github.com/orourkera/getrucky-bot/internal/ledger"
	"github.com/orourkera/getrucky-bot/internal/policy"
	"github.com/orourkera/getrucky-bot/internal/quota"
	"github.com/orourkera/getrucky-bot/internal/sentiment"
)

// --- Fakes ---

type fakeSocial struct {
	mu         sync.Mutex
	posts      []string
	replies    map[string][]string
	likes      []string
	reposts    []string
	mentions   []domain.Mention
	candidates []domain.EngagementCandidate
	followers  map[string]int

	postErrs  []error // consumed one per PostContent call
	replyErr  error
	likeErr   error
	repostErr error
	searchErr error
}

func newFakeSocial() *fakeSocial {
	return &fakeSocial{replies: make(map[string][]string)}
}

func (f *fakeSocial) PostContent(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.postErrs) > 0 {
		err := f.postErrs[0]
		f.postErrs = f.postErrs[1:]
		if err != nil {
			return "", err
		}
	}
	f.posts = append(f.posts, text)
	return fmt.Sprintf("post-%d", len(f.posts)), nil
}

func (f *fakeSocial) ReplyToContent(_ context.Context, id, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replyErr != nil {
		return "", f.replyErr
	}
	f.replies[id] = append(f.replies[id], text)
	return fmt.Sprintf("reply-%d", len(f.replies)), nil
}

func (f *fakeSocial) LikeContent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.likeErr != nil {
		return f.likeErr
	}
	f.likes = append(f.likes, id)
	return nil
}

func (f *fakeSocial) RepostContent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.repostErr != nil {
		return f.repostErr
	}
	f.reposts = append(f.reposts, id)
	return nil
}

func (f *fakeSocial) SearchContent(context.Context, string, int) ([]domain.EngagementCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.candidates, nil
}

func (f *fakeSocial) FetchMentions(context.Context, string) ([]domain.Mention, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.mentions, nil
}

func (f *fakeSocial) FetchFollowerCount(_ context.Context, account string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.followers[account], nil
}

func (f *fakeSocial) postCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
	text  string
}

func (f *fakeGenerator) GenerateText(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.text != "" {
		return f.text, nil
	}
	return "Generated ruck wisdom. 🥾 #GetRucky", nil
}

// --- Harness ---

type harness struct {
	clock     *clockwork.FakeClock
	scheduler *Scheduler
	social    *fakeSocial
	gen       *fakeGenerator
	ledger    *ledger.MemoryLog
	quota     *quota.Tracker
}

func testPolicies() map[domain.Capability]domain.WindowPolicy {
	policies := domain.DefaultWindowPolicies()
	policies[domain.CapabilityCrosspost] = domain.WindowPolicy{Limit: 10, Window: 7 * 24 * time.Hour}
	return policies
}

func newHarness(t *testing.T, policies map[domain.Capability]domain.WindowPolicy) *harness {
	t.Helper()

	clock := clockwork.NewFakeClock()
	tracker, err := quota.New(policies, clock)
	require.NoError(t, err)

	memLog := ledger.NewMemoryLog(clock)
	social := newFakeSocial()
	gen := &fakeGenerator{}

	selector, err := content.NewSelector(content.DefaultWeights(), content.DefaultThemes(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	deps := Deps{
		Clock:      clock,
		Quota:      tracker,
		Cache:      gencache.New(gencache.NewMemoryStore(clock), 24*time.Hour),
		Selector:   selector,
		Prompts:    content.NewPrompts(rand.New(rand.NewSource(2))),
		Templates:  content.NewTemplates(rand.New(rand.NewSource(3))),
		Filter:     content.NewFilter([]string{"badword"}),
		Classifier: sentiment.NewClassifier(nil),
		Policy: policy.NewEngine(tracker, policy.Options{
			LikeProbability:   1,
			RepostAllowlist:   []string{"GaryBrecka"},
			MinFollowers:      1000,
			MinCrosspostLikes: 5,
		}, rand.New(rand.NewSource(4))),
		Social:    social,
		Generator: gen,
		Ledger:    memLog,
		Rand:      rand.New(rand.NewSource(5)),
	}
	opts := Options{
		BotHandle:           "getrucky",
		PostInterval:        3 * time.Hour,
		MentionPollInterval: 5 * time.Minute,
		SweepInterval:       2 * time.Hour,
		CallTimeout:         time.Second,
		RetryAttempts:       3,
		BackoffBase:         time.Millisecond,
		RateLimitBackoff:    2 * time.Millisecond,
		SearchTerms:         []string{"ruck"},
		MinEngagement:       1,
	}

	return &harness{
		clock:     clock,
		scheduler: New(deps, opts),
		social:    social,
		gen:       gen,
		ledger:    memLog,
		quota:     tracker,
	}
}

func (h *harness) records(t *testing.T, capability domain.Capability) []domain.InteractionRecord {
	t.Helper()
	recs, err := h.ledger.Query(context.Background(), capability, time.Time{})
	require.NoError(t, err)
	return recs
}

// --- Tick behavior ---

func TestPostTick_PostsAndRecords(t *testing.T) {
	h := newHarness(t, testPolicies())

	h.scheduler.postTick(context.Background())

	require.Equal(t, 1, h.social.postCount())
	recs := h.records(t, domain.CapabilityPost)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ActionPosted, recs[0].Action)
	assert.Equal(t, "post-1", recs[0].SourceID)
	assert.NotEmpty(t, recs[0].Category)
}

func TestPostTick_QuotaDeniedSkipsWithoutExternalWork(t *testing.T) {
	policies := testPolicies()
	policies[domain.CapabilityPost] = domain.WindowPolicy{Limit: 1, Window: time.Hour}
	h := newHarness(t, policies)

	adm, err := h.quota.CheckAndReserve(domain.CapabilityPost, 1)
	require.NoError(t, err)
	require.True(t, adm.Admitted)

	h.scheduler.postTick(context.Background())

	assert.Equal(t, 0, h.social.postCount(), "quota denial must fail fast before generation")
	assert.Equal(t, 0, h.gen.calls)
	recs := h.records(t, domain.CapabilityPost)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ActionSkipped, recs[0].Action)
	assert.Equal(t, domain.ReasonQuotaExhausted, recs[0].Reason)
}

func TestPostTick_RetriesTransientFailuresOnce(t *testing.T) {
	h := newHarness(t, testPolicies())
	h.social.postErrs = []error{
		fmt.Errorf("%w: 503", domain.ErrRateLimited),
		fmt.Errorf("timeout"),
		nil,
	}

	h.scheduler.postTick(context.Background())

	assert.Equal(t, 1, h.social.postCount(), "two failures then success must yield one post")
	recs := h.records(t, domain.CapabilityPost)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ActionPosted, recs[0].Action)
}

func TestPostTick_PermanentRejectionSkipsImmediately(t *testing.T) {
	h := newHarness(t, testPolicies())
	h.social.postErrs = []error{
		fmt.Errorf("%w: duplicate", domain.ErrRejected),
		nil, nil,
	}

	h.scheduler.postTick(context.Background())

	assert.Equal(t, 0, h.social.postCount(), "rejection must not be retried")
	recs := h.records(t, domain.CapabilityPost)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ActionSkipped, recs[0].Action)
	assert.Equal(t, domain.ReasonRejected, recs[0].Reason)
}

func TestPostTick_FailureReleasesQuota(t *testing.T) {
	policies := testPolicies()
	policies[domain.CapabilityPost] = domain.WindowPolicy{Limit: 1, Window: time.Hour}
	h := newHarness(t, policies)
	h.social.postErrs = []error{
		fmt.Errorf("down"), fmt.Errorf("down"), fmt.Errorf("down"),
	}

	h.scheduler.postTick(context.Background())

	for _, st := range h.quota.Snapshot() {
		if st.Capability == domain.CapabilityPost {
			assert.Equal(t, 1, st.Remaining, "failed post must not consume budget")
		}
	}
}

func TestPostTick_GenerationFailureFallsBackToTemplate(t *testing.T) {
	h := newHarness(t, testPolicies())
	h.gen.err = fmt.Errorf("provider down")

	h.scheduler.postTick(context.Background())

	require.Equal(t, 1, h.social.postCount())
	recs := h.records(t, domain.CapabilityPost)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ActionPosted, recs[0].Action, "generation failure degrades, never halts")
}

func TestPostTick_ModerationBlocksFlaggedContent(t *testing.T) {
	h := newHarness(t, testPolicies())
	h.gen.text = "this contains a badword somewhere"

	h.scheduler.postTick(context.Background())

	assert.Equal(t, 0, h.social.postCount())
	recs := h.records(t, domain.CapabilityPost)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ActionSkipped, recs[0].Action)
	assert.Equal(t, domain.ReasonModerationFlagged, recs[0].Reason)
}

func TestPostTick_TruncatesLongGenerations(t *testing.T) {
	h := newHarness(t, testPolicies())
	h.gen.text = strings.Repeat("ruck ", 100) // 500 chars

	h.scheduler.postTick(context.Background())

	require.Equal(t, 1, h.social.postCount())
	posted := h.social.posts[0]
	assert.LessOrEqual(t, len([]rune(posted)), maxPostRunes)
	assert.True(t, strings.HasSuffix(posted, "..."))
}

func TestMentionTick_RepliesWithAuthorPrefixAndSentiment(t *testing.T) {
	h := newHarness(t, testPolicies())
	h.social.mentions = []domain.Mention{
		{ID: "m1", Author: "happy_rucker", Text: "I love rucking with this app!"},
	}

	h.scheduler.mentionTick(context.Background())

	require.Len(t, h.social.replies["m1"], 1)
	assert.True(t, strings.HasPrefix(h.social.replies["m1"][0], "@happy_rucker "))

	recs := h.records(t, domain.CapabilityReply)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ActionReplied, recs[0].Action)
	assert.Equal(t, "m1", recs[0].SourceID)
	assert.Greater(t, recs[0].Polarity, 0.0)
	assert.True(t, recs[0].MentionsKeyword)
	assert.Equal(t, "m1", h.scheduler.lastSeenID())
}

func TestMentionTick_ReplyQuotaStopsBatch(t *testing.T) {
	policies := testPolicies()
	policies[domain.CapabilityReply] = domain.WindowPolicy{Limit: 1, Window: time.Hour}
	h := newHarness(t, policies)
	h.social.mentions = []domain.Mention{
		{ID: "m1", Author: "a", Text: "great app"},
		{ID: "m2", Author: "b", Text: "awesome rucking"},
		{ID: "m3", Author: "c", Text: "hello"},
	}

	h.scheduler.mentionTick(context.Background())

	assert.Len(t, h.social.replies["m1"], 1)
	assert.Empty(t, h.social.replies["m3"], "batch must pause after quota denial")
	assert.Equal(t, "m1", h.scheduler.lastSeenID(),
		"the high-water mark must not advance past unhandled mentions")
}

func TestSweepTick_ExecutesPolicyDecisions(t *testing.T) {
	h := newHarness(t, testPolicies())
	h.social.candidates = []domain.EngagementCandidate{
		{ID: "c1", Author: "GaryBrecka", AuthorFollowers: 50, LikeCount: 100},
		{ID: "c2", Author: "small_account", AuthorFollowers: 10, LikeCount: 1},
	}

	h.scheduler.sweepTick(context.Background())

	// c1: allowlisted author, hot post → like + repost + crosspost.
	assert.Contains(t, h.social.likes, "c1")
	assert.Contains(t, h.social.reposts, "c1")
	require.Len(t, h.social.replies["c1"], 1)

	// c2: like only (p=1), no repost eligibility, below crosspost floor.
	assert.Contains(t, h.social.likes, "c2")
	assert.NotContains(t, h.social.reposts, "c2")
	assert.Empty(t, h.social.replies["c2"])

	crossposts := h.records(t, domain.CapabilityCrosspost)
	require.Len(t, crossposts, 1)
	assert.Equal(t, domain.ActionCrossposted, crossposts[0].Action)
}

func TestSweepTick_HydratesMissingFollowerCounts(t *testing.T) {
	h := newHarness(t, testPolicies())
	h.social.candidates = []domain.EngagementCandidate{
		{ID: "c1", Author: "big_account", AuthorFollowers: 0, LikeCount: 1},
	}
	h.social.followers = map[string]int{"big_account": 1500}

	h.scheduler.sweepTick(context.Background())

	assert.Contains(t, h.social.reposts, "c1",
		"a fetched follower count above the threshold makes the candidate repost-eligible")
}

func TestSweepTick_FailedLikeReleasesQuotaAndRecordsSkip(t *testing.T) {
	h := newHarness(t, testPolicies())
	h.social.candidates = []domain.EngagementCandidate{{ID: "c1", AuthorFollowers: 10}}
	h.social.likeErr = fmt.Errorf("%w: duplicate", domain.ErrRejected)

	before := remaining(h.quota, domain.CapabilityLike)
	h.scheduler.sweepTick(context.Background())

	recs := h.records(t, domain.CapabilityLike)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ActionSkipped, recs[0].Action)
	assert.Equal(t, before, remaining(h.quota, domain.CapabilityLike))
}

func TestSweepTick_CrosspostConsumesWeeklyBudgetOnlyOnExecution(t *testing.T) {
	policies := testPolicies()
	policies[domain.CapabilityCrosspost] = domain.WindowPolicy{Limit: 2, Window: 7 * 24 * time.Hour}
	h := newHarness(t, policies)
	h.social.candidates = []domain.EngagementCandidate{
		{ID: "c1", AuthorFollowers: 10, LikeCount: 100},
	}

	h.scheduler.sweepTick(context.Background())
	assert.Equal(t, 1, remaining(h.quota, domain.CapabilityCrosspost))

	// A failed crosspost returns its unit.
	h.social.replyErr = fmt.Errorf("down")
	h.scheduler.sweepTick(context.Background())
	assert.Equal(t, 1, remaining(h.quota, domain.CapabilityCrosspost))
}

func TestTicks_SearchAndGenerateUsageIsLedgered(t *testing.T) {
	h := newHarness(t, testPolicies())
	h.social.mentions = []domain.Mention{{ID: "m1", Author: "walker", Text: "Love rucking!"}}

	h.scheduler.mentionTick(context.Background())
	h.scheduler.sweepTick(context.Background())

	searched := h.records(t, domain.CapabilitySearch)
	require.Len(t, searched, 2)
	assert.Equal(t, domain.ActionSearched, searched[0].Action)
	assert.Equal(t, "mentions", searched[0].Category)
	assert.Equal(t, domain.ActionSearched, searched[1].Action)
	assert.Equal(t, "ruck", searched[1].Category)

	generated := h.records(t, domain.CapabilityGenerate)
	require.Len(t, generated, 1)
	assert.Equal(t, domain.ActionGenerated, generated[0].Action)

	// A tracker replaying this ledger must agree with the live one, so
	// search and generate usage survives a restart.
	restarted, err := quota.New(testPolicies(), h.clock)
	require.NoError(t, err)
	require.NoError(t, restarted.Restore(context.Background(), h.ledger))
	assert.Equal(t, h.quota.Snapshot(), restarted.Snapshot())
}

func TestRecord_StorageFailureIsFatal(t *testing.T) {
	h := newHarness(t, testPolicies())
	failing := &failingLedger{}
	h.scheduler.deps.Ledger = failing

	h.scheduler.postTick(context.Background())

	select {
	case err := <-h.scheduler.Fatal():
		assert.ErrorIs(t, err, domain.ErrStorageFailure)
	default:
		t.Fatal("expected a fatal error after a ledger append failure")
	}
}

type failingLedger struct{}

func (f *failingLedger) Append(context.Context, domain.InteractionRecord) error {
	return domain.ErrStorageFailure
}

func (f *failingLedger) Query(context.Context, domain.Capability, time.Time) ([]domain.InteractionRecord, error) {
	return nil, nil
}

func (f *failingLedger) Summarize(context.Context, time.Time) (domain.Summary, error) {
	return domain.Summary{}, nil
}

func remaining(tracker *quota.Tracker, capability domain.Capability) int {
	for _, st := range tracker.Snapshot() {
		if st.Capability == capability {
			return st.Remaining
		}
	}
	return -1
}

// --- Lifecycle ---

func TestScheduler_StartStopStateMachine(t *testing.T) {
	h := newHarness(t, testPolicies())

	assert.Equal(t, StateIdle, h.scheduler.State())
	require.NoError(t, h.scheduler.Start())
	assert.Equal(t, StateRunning, h.scheduler.State())

	assert.Error(t, h.scheduler.Start(), "double start must fail")

	h.scheduler.Stop()
	assert.Equal(t, StateStopped, h.scheduler.State())

	assert.Error(t, h.scheduler.Start(), "a stopped scheduler does not restart")
}

func TestScheduler_TickerDrivesPosting(t *testing.T) {
	h := newHarness(t, testPolicies())
	require.NoError(t, h.scheduler.Start())
	defer h.scheduler.Stop()

	// Wait for all three loops to be parked on their tickers.
	h.clock.BlockUntil(3)
	h.clock.Advance(3 * time.Hour)

	assert.Eventually(t, func() bool { return h.social.postCount() >= 1 },
		time.Second, 5*time.Millisecond)
}

func TestScheduler_StopDoesNotStrandInFlightWork(t *testing.T) {
	h := newHarness(t, testPolicies())
	h.social.mentions = []domain.Mention{{ID: "m1", Author: "a", Text: "hi"}}

	require.NoError(t, h.scheduler.Start())
	h.clock.BlockUntil(3)
	h.clock.Advance(5 * time.Minute)

	assert.Eventually(t, func() bool {
		return len(h.records(t, domain.CapabilityReply)) == 1
	}, time.Second, 5*time.Millisecond)

	h.scheduler.Stop()
	assert.Equal(t, StateStopped, h.scheduler.State())

	// The outcome committed before the loops exited.
	recs := h.records(t, domain.CapabilityReply)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ActionReplied, recs[0].Action)
}

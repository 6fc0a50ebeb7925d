package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/orourkera/getrucky-bot/internal/domain"
	"github.com/orourkera/getrucky-bot/internal/metrics"
)

// maxPostRunes is the platform's post length ceiling.
const maxPostRunes = 280

// postTick generates and publishes one content post.
func (s *Scheduler) postTick(ctx context.Context) {
	if !s.reserve(ctx, domain.CapabilityPost, "") {
		return
	}

	now := s.deps.Clock.Now()
	selection := s.deps.Selector.Select(now.UTC().Weekday())
	category := string(selection.Category)
	if selection.Theme != "" {
		category = fmt.Sprintf("%s:%s", selection.Category, selection.Theme)
	}

	prompt := s.deps.Prompts.ForPost(selection, now)
	text := s.produce(ctx, prompt, func() string {
		return s.deps.Templates.Post(selection.Category)
	})

	if verdict := s.deps.Filter.Check(text); !verdict.Clean {
		s.deps.Quota.Release(domain.CapabilityPost, 1)
		s.record(ctx, domain.InteractionRecord{
			Capability: domain.CapabilityPost,
			Category:   category,
			Action:     domain.ActionSkipped,
			Reason:     domain.ReasonModerationFlagged,
			CreatedAt:  now,
		})
		return
	}

	text = truncate(text)
	id, err := s.call(ctx, domain.CapabilityPost, func(callCtx context.Context) (string, error) {
		return s.deps.Social.PostContent(callCtx, text)
	})
	if err != nil {
		slog.ErrorContext(ctx, "Post failed", "category", category, "error", err)
		s.deps.Quota.Release(domain.CapabilityPost, 1)
		s.record(ctx, domain.InteractionRecord{
			Capability: domain.CapabilityPost,
			Category:   category,
			Action:     domain.ActionSkipped,
			Reason:     skipReason(err),
			CreatedAt:  s.deps.Clock.Now(),
		})
		return
	}

	slog.InfoContext(ctx, "Posted content", "id", id, "category", category)
	s.record(ctx, domain.InteractionRecord{
		SourceID:   id,
		Capability: domain.CapabilityPost,
		Category:   category,
		Action:     domain.ActionPosted,
		CreatedAt:  s.deps.Clock.Now(),
	})
}

// mentionTick polls for new mentions and replies to each. The batch stops at
// the first reply-quota denial and resumes from the high-water mark on the
// next tick.
func (s *Scheduler) mentionTick(ctx context.Context) {
	if !s.reserve(ctx, domain.CapabilitySearch, "") {
		return
	}

	sinceID := s.lastSeenID()
	var mentions []domain.Mention
	err := s.callVoid(ctx, domain.CapabilitySearch, func(callCtx context.Context) error {
		fetched, fetchErr := s.deps.Social.FetchMentions(callCtx, sinceID)
		if fetchErr != nil {
			return fetchErr
		}
		mentions = fetched
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "Mention fetch failed", "error", err)
		s.deps.Quota.Release(domain.CapabilitySearch, 1)
		s.record(ctx, domain.InteractionRecord{
			Capability: domain.CapabilitySearch,
			Action:     domain.ActionSkipped,
			Reason:     skipReason(err),
			CreatedAt:  s.deps.Clock.Now(),
		})
		return
	}

	// The fetch consumed a search unit; the ledger must see it so replay
	// rebuilds the search window after a restart.
	s.record(ctx, domain.InteractionRecord{
		Capability: domain.CapabilitySearch,
		Category:   "mentions",
		Action:     domain.ActionSearched,
		CreatedAt:  s.deps.Clock.Now(),
	})

	for _, mention := range mentions {
		// A shutdown finishes the current mention, never starts the next.
		if ctx.Err() != nil {
			return
		}
		if !s.replyTo(ctx, mention) {
			return
		}
		s.markSeen(mention.ID)
	}
}

// replyTo handles one mention. Returns false when the batch should stop
// (reply quota exhausted for this window).
func (s *Scheduler) replyTo(ctx context.Context, mention domain.Mention) bool {
	adm, err := s.deps.Quota.CheckAndReserve(domain.CapabilityReply, 1)
	if err != nil {
		slog.ErrorContext(ctx, "Quota check failed", "capability", domain.CapabilityReply, "error", err)
		return false
	}
	if !adm.Admitted {
		slog.InfoContext(ctx, "Reply quota exhausted, pausing mention batch", "retry_after", adm.RetryAfter)
		s.record(ctx, domain.InteractionRecord{
			SourceID:   mention.ID,
			Capability: domain.CapabilityReply,
			Action:     domain.ActionSkipped,
			Reason:     domain.ReasonQuotaExhausted,
			CreatedAt:  s.deps.Clock.Now(),
		})
		return false
	}

	result := s.deps.Classifier.Classify(mention.Text)
	prompt := s.deps.Prompts.ForReply(result)
	text := s.produce(ctx, prompt, func() string {
		return s.deps.Templates.Reply(result)
	})

	if verdict := s.deps.Filter.Check(text); !verdict.Clean {
		s.deps.Quota.Release(domain.CapabilityReply, 1)
		s.record(ctx, s.mentionRecord(mention, result, domain.ActionSkipped, domain.ReasonModerationFlagged))
		return true
	}

	reply := truncate(fmt.Sprintf("@%s %s", mention.Author, text))
	_, err = s.call(ctx, domain.CapabilityReply, func(callCtx context.Context) (string, error) {
		return s.deps.Social.ReplyToContent(callCtx, mention.ID, reply)
	})
	if err != nil {
		slog.ErrorContext(ctx, "Reply failed", "mention_id", mention.ID, "error", err)
		s.deps.Quota.Release(domain.CapabilityReply, 1)
		s.record(ctx, s.mentionRecord(mention, result, domain.ActionSkipped, skipReason(err)))
		return true
	}

	slog.InfoContext(ctx, "Replied to mention",
		"mention_id", mention.ID, "author", mention.Author, "sentiment", result.Bucket)
	s.record(ctx, s.mentionRecord(mention, result, domain.ActionReplied, ""))
	return true
}

// sweepTick searches for candidate posts and runs the engagement policy over
// the batch.
func (s *Scheduler) sweepTick(ctx context.Context) {
	if !s.reserve(ctx, domain.CapabilitySearch, "") {
		return
	}

	term := s.searchTerm()
	var candidates []domain.EngagementCandidate
	err := s.callVoid(ctx, domain.CapabilitySearch, func(callCtx context.Context) error {
		found, searchErr := s.deps.Social.SearchContent(callCtx, term, s.opts.MinEngagement)
		if searchErr != nil {
			return searchErr
		}
		candidates = found
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "Candidate search failed", "term", term, "error", err)
		s.deps.Quota.Release(domain.CapabilitySearch, 1)
		s.record(ctx, domain.InteractionRecord{
			Capability: domain.CapabilitySearch,
			Action:     domain.ActionSkipped,
			Reason:     skipReason(err),
			CreatedAt:  s.deps.Clock.Now(),
		})
		return
	}

	s.record(ctx, domain.InteractionRecord{
		Capability: domain.CapabilitySearch,
		Category:   term,
		Action:     domain.ActionSearched,
		CreatedAt:  s.deps.Clock.Now(),
	})

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return
		}
		s.engage(ctx, candidate)
	}
}

// engage executes the policy decision for one candidate. Reserved quota for
// an action that fails is released so the budget reflects executed actions
// only.
func (s *Scheduler) engage(ctx context.Context, candidate domain.EngagementCandidate) {
	// Search payloads may omit follower counts; hydrate before the policy
	// runs so the repost threshold sees real numbers. A failed fetch leaves
	// the count at zero, which only makes the policy more conservative.
	if candidate.AuthorFollowers == 0 && candidate.Author != "" {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.CallTimeout)
		if n, err := s.deps.Social.FetchFollowerCount(callCtx, candidate.Author); err == nil {
			candidate.AuthorFollowers = n
		} else {
			slog.DebugContext(ctx, "Follower count fetch failed", "account", candidate.Author, "error", err)
		}
		cancel()
	}

	decision := s.deps.Policy.Decide(candidate)

	if decision.Like {
		err := s.callVoid(ctx, domain.CapabilityLike, func(callCtx context.Context) error {
			return s.deps.Social.LikeContent(callCtx, candidate.ID)
		})
		s.finishAction(ctx, candidate.ID, domain.CapabilityLike, domain.ActionLiked, err)
	}

	if decision.Repost {
		err := s.callVoid(ctx, domain.CapabilityRepost, func(callCtx context.Context) error {
			return s.deps.Social.RepostContent(callCtx, candidate.ID)
		})
		s.finishAction(ctx, candidate.ID, domain.CapabilityRepost, domain.ActionReposted, err)
	}

	if decision.Crosspost {
		s.crosspost(ctx, candidate)
	}
}

func (s *Scheduler) crosspost(ctx context.Context, candidate domain.EngagementCandidate) {
	text := s.produce(ctx, s.deps.Prompts.ForCrosspost(), s.deps.Templates.Crosspost)

	if verdict := s.deps.Filter.Check(text); !verdict.Clean {
		s.deps.Quota.Release(domain.CapabilityCrosspost, 1)
		s.record(ctx, domain.InteractionRecord{
			SourceID:   candidate.ID,
			Capability: domain.CapabilityCrosspost,
			Action:     domain.ActionSkipped,
			Reason:     domain.ReasonModerationFlagged,
			CreatedAt:  s.deps.Clock.Now(),
		})
		return
	}

	_, err := s.call(ctx, domain.CapabilityCrosspost, func(callCtx context.Context) (string, error) {
		return s.deps.Social.ReplyToContent(callCtx, candidate.ID, truncate(text))
	})
	s.finishAction(ctx, candidate.ID, domain.CapabilityCrosspost, domain.ActionCrossposted, err)
}

// finishAction records the outcome of an engagement call and returns the
// reserved unit on failure.
func (s *Scheduler) finishAction(ctx context.Context, sourceID string, capability domain.Capability, success domain.Action, err error) {
	rec := domain.InteractionRecord{
		SourceID:   sourceID,
		Capability: capability,
		Action:     success,
		CreatedAt:  s.deps.Clock.Now(),
	}
	if err != nil {
		slog.ErrorContext(ctx, "Engagement action failed",
			"capability", capability, "source_id", sourceID, "error", err)
		s.deps.Quota.Release(capability, 1)
		rec.Action = domain.ActionSkipped
		rec.Reason = skipReason(err)
	}
	s.record(ctx, rec)
}

// produce resolves text for a prompt via the generation cache, consuming one
// unit of generate quota on a true miss. Any failure degrades to the static
// template.
func (s *Scheduler) produce(ctx context.Context, prompt string, fallback func() string) string {
	text, _, err := s.deps.Cache.GetOrGenerate(ctx, prompt, 0, func(genCtx context.Context) (string, error) {
		adm, qErr := s.deps.Quota.CheckAndReserve(domain.CapabilityGenerate, 1)
		if qErr != nil {
			return "", qErr
		}
		if !adm.Admitted {
			return "", domain.ErrQuotaExceeded
		}
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(genCtx), s.opts.CallTimeout)
		defer cancel()
		generated, genErr := s.deps.Generator.GenerateText(callCtx, prompt)
		if genErr != nil {
			s.deps.Quota.Release(domain.CapabilityGenerate, 1)
			return "", genErr
		}
		// A true miss consumed a generate unit; ledger it for replay.
		s.record(genCtx, domain.InteractionRecord{
			Capability: domain.CapabilityGenerate,
			Action:     domain.ActionGenerated,
			CreatedAt:  s.deps.Clock.Now(),
		})
		return generated, nil
	})
	if err != nil {
		metrics.GenerationFallbacksTotal.Inc()
		slog.WarnContext(ctx, "Falling back to static template", "error", err)
		return fallback()
	}
	return text
}

func (s *Scheduler) mentionRecord(mention domain.Mention, result domain.SentimentResult, action domain.Action, reason string) domain.InteractionRecord {
	return domain.InteractionRecord{
		SourceID:        mention.ID,
		Capability:      domain.CapabilityReply,
		Category:        string(result.Bucket),
		Action:          action,
		Reason:          reason,
		Polarity:        result.Polarity,
		Subjectivity:    result.Subjectivity,
		IsQuestion:      result.IsQuestion,
		MentionsKeyword: result.MentionsKeyword,
		HasHashtag:      result.HasHashtag,
		CreatedAt:       s.deps.Clock.Now(),
	}
}

func (s *Scheduler) searchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.SearchTerms[s.deps.Rand.Intn(len(s.opts.SearchTerms))]
}

// truncate caps text at the platform limit, marking the cut with an
// ellipsis.
func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxPostRunes {
		return text
	}
	return string(runes[:maxPostRunes-3]) + "..."
}

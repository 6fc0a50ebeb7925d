package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Model types ---

// Action is the outcome recorded for a decision point.
type Action string

const (
	ActionPosted      Action = "posted"
	ActionReplied     Action = "replied"
	ActionLiked       Action = "liked"
	ActionReposted    Action = "reposted"
	ActionCrossposted Action = "crossposted"
	// ActionSearched and ActionGenerated account for successful search and
	// text-generation calls. They carry no outward side effect but consume
	// quota, so replay needs them on the ledger.
	ActionSearched  Action = "searched"
	ActionGenerated Action = "generated"
	ActionSkipped   Action = "skipped"
)

// Skip reason codes attached to ActionSkipped records.
const (
	ReasonQuotaExhausted    = "quota_exhausted"
	ReasonProviderError     = "provider_error"
	ReasonRejected          = "rejected"
	ReasonModerationFlagged = "moderation_flagged"
	ReasonNoContent         = "no_content"
)

// InteractionRecord is one immutable entry in the append-only engagement
// ledger. The ledger is the durable source of truth for quota recovery.
type InteractionRecord struct {
	ID              uuid.UUID  `db:"id"`
	SourceID        string     `db:"source_id"`
	Capability      Capability `db:"capability"`
	Category        string     `db:"category"`
	Action          Action     `db:"action"`
	Reason          string     `db:"reason"`
	Polarity        float64    `db:"polarity"`
	Subjectivity    float64    `db:"subjectivity"`
	IsQuestion      bool       `db:"is_question"`
	MentionsKeyword bool       `db:"mentions_keyword"`
	HasHashtag      bool       `db:"has_hashtag"`
	CreatedAt       time.Time  `db:"created_at"`
}

// EngagementCandidate is a post under consideration for engagement actions.
// Transient, never persisted.
type EngagementCandidate struct {
	ID              string
	Author          string
	AuthorFollowers int
	Text            string
	LikeCount       int
}

// EngagementDecision is the policy engine's verdict for one candidate. The
// three actions are independent; any subset may be set.
type EngagementDecision struct {
	Like      bool
	Repost    bool
	Crosspost bool
}

// Mention is an incoming post that references the bot's account.
type Mention struct {
	ID     string
	Author string
	Text   string
}

// SentimentBucket is one of five ordered sentiment categories.
type SentimentBucket string

const (
	SentimentVeryPositive SentimentBucket = "very_positive"
	SentimentPositive     SentimentBucket = "positive"
	SentimentNeutral      SentimentBucket = "neutral"
	SentimentNegative     SentimentBucket = "negative"
	SentimentVeryNegative SentimentBucket = "very_negative"
)

// SentimentResult is the classifier's verdict for one incoming text.
type SentimentResult struct {
	Bucket          SentimentBucket
	Polarity        float64
	Subjectivity    float64
	IsQuestion      bool
	MentionsKeyword bool
	HasHashtag      bool
}

// Summary aggregates ledger activity since a point in time, for analytics
// and the status surface.
type Summary struct {
	Since      time.Time          `json:"since"`
	Total      int                `json:"total"`
	ByAction   map[Action]int     `json:"by_action"`
	ByCategory map[string]int     `json:"by_category"`
	ByReason   map[string]int     `json:"by_reason,omitempty"`
	ByCap      map[Capability]int `json:"by_capability"`
}

// --- Interfaces ---

// SocialClient abstracts the social platform's rate-limited actions. The
// transport and auth behind it are an external collaborator's concern.
type SocialClient interface {
	PostContent(ctx context.Context, text string) (string, error)
	ReplyToContent(ctx context.Context, id, text string) (string, error)
	LikeContent(ctx context.Context, id string) error
	RepostContent(ctx context.Context, id string) error
	SearchContent(ctx context.Context, query string, minEngagement int) ([]EngagementCandidate, error)
	FetchMentions(ctx context.Context, sinceID string) ([]Mention, error)
	FetchFollowerCount(ctx context.Context, account string) (int, error)
}

// TextGenerator abstracts the AI text-generation capability.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// InteractionLog is the durable append-only record of every decision taken.
// Query feeds quota recovery after a restart, so implementations must return
// records ordered by creation time.
type InteractionLog interface {
	Append(ctx context.Context, record InteractionRecord) error
	Query(ctx context.Context, capability Capability, since time.Time) ([]InteractionRecord, error)
	Summarize(ctx context.Context, since time.Time) (Summary, error)
}

// Package social holds SocialClient implementations. The production
// platform transport lives outside this repository; DryRun stands in for it
// during local runs and staging, logging every action instead of performing
// network I/O.
package social

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/orourkera/getrucky-bot/internal/domain"
)

// DryRun is a no-network SocialClient. Actions succeed with synthetic IDs;
// searches and mention polls come back empty.
type DryRun struct {
	seq atomic.Int64
}

func NewDryRun() *DryRun {
	return &DryRun{}
}

func (d *DryRun) PostContent(ctx context.Context, text string) (string, error) {
	id := fmt.Sprintf("dryrun-post-%d", d.seq.Add(1))
	slog.InfoContext(ctx, "[dry-run] post", "id", id, "text", text)
	return id, nil
}

func (d *DryRun) ReplyToContent(ctx context.Context, id, text string) (string, error) {
	replyID := fmt.Sprintf("dryrun-reply-%d", d.seq.Add(1))
	slog.InfoContext(ctx, "[dry-run] reply", "in_reply_to", id, "id", replyID, "text", text)
	return replyID, nil
}

func (d *DryRun) LikeContent(ctx context.Context, id string) error {
	slog.InfoContext(ctx, "[dry-run] like", "id", id)
	return nil
}

func (d *DryRun) RepostContent(ctx context.Context, id string) error {
	slog.InfoContext(ctx, "[dry-run] repost", "id", id)
	return nil
}

func (d *DryRun) SearchContent(ctx context.Context, query string, minEngagement int) ([]domain.EngagementCandidate, error) {
	slog.DebugContext(ctx, "[dry-run] search", "query", query, "min_engagement", minEngagement)
	return nil, nil
}

func (d *DryRun) FetchMentions(ctx context.Context, sinceID string) ([]domain.Mention, error) {
	slog.DebugContext(ctx, "[dry-run] fetch mentions", "since_id", sinceID)
	return nil, nil
}

func (d *DryRun) FetchFollowerCount(ctx context.Context, account string) (int, error) {
	slog.DebugContext(ctx, "[dry-run] fetch follower count", "account", account)
	return 0, nil
}

package content

import (
	"log/slog"
	"strings"

	"github.com/orourkera/getrucky-bot/internal/metrics"
)

// Verdict is the moderation filter's result for one outbound text.
type Verdict struct {
	Clean   bool
	Flagged []string
}

// Filter blocks outbound text containing blocklisted words. Flagged content
// is never posted.
type Filter struct {
	blocklist []string
}

func NewFilter(blocklist []string) *Filter {
	lowered := make([]string, 0, len(blocklist))
	for _, word := range blocklist {
		if w := strings.ToLower(strings.TrimSpace(word)); w != "" {
			lowered = append(lowered, w)
		}
	}
	return &Filter{blocklist: lowered}
}

// Check matches the text case-insensitively against the blocklist.
func (f *Filter) Check(text string) Verdict {
	if text == "" {
		return Verdict{Clean: true}
	}

	lowered := strings.ToLower(text)
	var flagged []string
	for _, word := range f.blocklist {
		if strings.Contains(lowered, word) {
			flagged = append(flagged, word)
		}
	}

	if len(flagged) > 0 {
		metrics.ModerationFlagsTotal.Inc()
		slog.Warn("Outbound content flagged by moderation filter", "flagged_words", strings.Join(flagged, ", "))
		return Verdict{Clean: false, Flagged: flagged}
	}
	return Verdict{Clean: true}
}

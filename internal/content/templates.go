package content

import (
	"math/rand"
	"sync"

	"github.com/orourkera/getrucky-bot/internal/domain"
)

// defaultTemplate is the last-resort text when no category template exists.
const defaultTemplate = "Ruck it Up with @getrucky! 🥾 #GetRucky"

var postTemplates = map[Category][]string{
	CategoryPun: {
		"Why did the rucker cross the road? To get to the other stride! 🥾 #GetRucky",
		"Keep calm and ruck on. Your pack has your back! 🎒 #GetRucky",
		"Ruck yeah! Another day, another mile. 🥾 #RuckLife",
	},
	CategoryChallenge: {
		"Challenge time: 3 miles, 20 lbs, before sunset. Who's in? 🥾 #GetRucky",
		"This week's mission: add 5 lbs to your ruck and hold your pace. Report back! 💪 #RuckLife",
	},
	CategoryTheme: {
		"Rucking builds strength, endurance, and mental grit, one weighted step at a time. 🥾 #GetRucky",
		"Low impact, high reward: rucking burns up to 3x the calories of walking. 🎒 #RuckLife",
	},
	CategoryPoll: {
		"Ruckers: morning miles or evening miles? 🌅🌙 #GetRucky",
		"What's in your ruck: plates, bricks, or books? 🎒 #RuckLife",
	},
	CategoryMeme: {
		"Me: it's just a walk with a backpack. Also me at mile 6: 🥵 #RuckLife",
		"Weather forecast: 100% chance of rucking. ⛅🥾 #GetRucky",
	},
	CategoryShoutout: {
		"Shout-out to everyone who rucked this week. Every mile counts! 🏆 #GetRucky",
		"To the rucker grinding out miles before dawn: we see you. 🥾 #RuckLife",
	},
	CategoryUGC: {
		"Love seeing the community out there rucking! Keep the miles coming. 🥾 #GetRucky",
		"Strong work! This is what #RuckLife looks like. 💪",
	},
}

var replyTemplates = map[string][]string{
	"positive": {
		"Ruck yeah! Love the energy — keep those miles coming! 🥾 #GetRucky",
		"That's what we like to hear! Strong work. 💪 #RuckLife",
	},
	"negative": {
		"Every rucker has tough days. Lighter pack tomorrow, longer stride next week. You've got this! 🥾",
		"Sorry to hear that — hang in there. The trail always evens out. 💪 #GetRucky",
	},
	"question": {
		"Great question! Start light, go slow, and build up — and check out @getrucky for tracking your rucks. 🥾",
		"Good one! Rule of thumb: 10% of bodyweight in the pack to start. @getrucky can track the rest. 🎒",
	},
	"neutral": {
		"Thanks for the mention! Happy rucking from the @getrucky crew. 🥾 #GetRucky",
		"Ruck on! 🥾 #GetRucky",
	},
}

// Templates serves static fallback texts used when generation fails. The
// random pick keeps repeated fallbacks from posting identical text.
type Templates struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewTemplates(rnd *rand.Rand) *Templates {
	return &Templates{rnd: rnd}
}

// Post returns a fallback post for the category.
func (t *Templates) Post(category Category) string {
	return t.pick(postTemplates[category])
}

// Reply returns a fallback reply tuned to the classifier's verdict.
func (t *Templates) Reply(result domain.SentimentResult) string {
	key := "neutral"
	switch {
	case result.IsQuestion:
		key = "question"
	case result.Bucket == domain.SentimentVeryPositive, result.Bucket == domain.SentimentPositive:
		key = "positive"
	case result.Bucket == domain.SentimentVeryNegative, result.Bucket == domain.SentimentNegative:
		key = "negative"
	}
	return t.pick(replyTemplates[key])
}

// Crosspost returns a fallback promotional comment.
func (t *Templates) Crosspost() string {
	return t.pick(postTemplates[CategoryUGC])
}

func (t *Templates) pick(variants []string) string {
	if len(variants) == 0 {
		return defaultTemplate
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return variants[t.rnd.Intn(len(variants))]
}

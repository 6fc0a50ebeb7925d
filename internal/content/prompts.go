package content

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/orourkera/getrucky-bot/internal/domain"
)

// Prompts builds generator prompts for posts and replies. Several phrasings
// exist per category; the pick is randomized so the generation cache does not
// pin every post of a category to one wording for a full TTL.
type Prompts struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewPrompts(rnd *rand.Rand) *Prompts {
	return &Prompts{rnd: rnd}
}

// ForPost returns the generator prompt for a content selection.
func (p *Prompts) ForPost(selection Selection, now time.Time) string {
	variants := postPrompts(selection, seasonOf(now.Month()))
	return variants[p.pick(len(variants))]
}

// ForReply returns the generator prompt for a mention, tuned to the
// classifier's verdict.
func (p *Prompts) ForReply(result domain.SentimentResult) string {
	var parts []string

	switch {
	case result.IsQuestion:
		parts = append(parts, "informative and helpful")
	case result.Bucket == domain.SentimentVeryPositive:
		parts = append(parts, "very enthusiastic and encouraging")
	case result.Bucket == domain.SentimentPositive:
		parts = append(parts, "positive and supportive")
	case result.Bucket == domain.SentimentVeryNegative:
		parts = append(parts, "empathetic and uplifting")
	case result.Bucket == domain.SentimentNegative:
		parts = append(parts, "understanding and motivational")
	default:
		parts = append(parts, "friendly and engaging")
	}

	parts = append(parts, "rucking")
	if result.MentionsKeyword {
		parts = append(parts, "acknowledging their rucking mention")
	}
	if result.IsQuestion {
		parts = append(parts, "answering their question")
	}

	return fmt.Sprintf("Generate a %s reply, <280 characters.", strings.Join(parts, " "))
}

// ForCrosspost returns the prompt for a promotional comment on someone
// else's post.
func (p *Prompts) ForCrosspost() string {
	return "Generate a comment for a rucking post, promoting @getrucky, <280 characters."
}

func (p *Prompts) pick(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.Intn(n)
}

func postPrompts(selection Selection, season string) []string {
	switch selection.Category {
	case CategoryPun:
		return []string{
			"Generate a creative rucking pun that plays on words like 'ruck', 'pack', or 'march', <280 characters.",
			"Create a witty rucking pun that would make fellow ruckers smile, <280 characters.",
			"Write a clever rucking pun that incorporates fitness or outdoor themes, <280 characters.",
		}
	case CategoryChallenge:
		return []string{
			fmt.Sprintf("Generate a %s-themed rucking challenge for 5 miles, <280 characters.", season),
			"Create a rucking challenge that encourages community participation, <280 characters.",
			"Design a progressive rucking challenge that builds endurance, <280 characters.",
		}
	case CategoryTheme:
		return []string{
			fmt.Sprintf("Generate a %s post about the health and fitness benefits of rucking. Make it informative, <280 characters.", selection.Theme),
			fmt.Sprintf("Create an engaging %s post highlighting why rucking is good for you, <280 characters.", selection.Theme),
			"Share a motivational fact about how rucking improves health, <280 characters.",
		}
	case CategoryPoll:
		return []string{
			"Generate a rucking poll about training preferences, <280 characters.",
			"Create a poll about favorite rucking locations, <280 characters.",
			"Design a poll about rucking gear preferences, <280 characters.",
		}
	case CategoryMeme:
		return []string{
			"Generate a humorous rucking meme about common rucking experiences, <280 characters.",
			"Create a relatable rucking meme about training struggles, <280 characters.",
			"Write a funny rucking meme about gear or preparation, <280 characters.",
		}
	case CategoryShoutout:
		return []string{
			"Generate a motivational shout-out for a rucking achievement, <280 characters.",
			"Create an encouraging shout-out for consistent rucking, <280 characters.",
			"Write an inspiring shout-out for a rucking milestone, <280 characters.",
		}
	case CategoryUGC:
		return []string{
			"Generate an engaging comment for a user's ruck post, <280 characters.",
			"Create a supportive comment for a rucking achievement, <280 characters.",
			"Write an encouraging comment for a rucking milestone, <280 characters.",
		}
	default:
		return []string{"Generate a creative rucking pun, <280 characters."}
	}
}

func seasonOf(month time.Month) string {
	switch month {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "fall"
	}
}

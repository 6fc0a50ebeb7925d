package content

import "time"

// Category is one of the bot's content variants.
type Category string

const (
	CategoryPun       Category = "pun"
	CategoryChallenge Category = "challenge"
	CategoryTheme     Category = "theme"
	CategoryPoll      Category = "poll"
	CategoryMeme      Category = "meme"
	CategoryShoutout  Category = "shoutout"
	CategoryUGC       Category = "ugc"
)

// categoryOrder fixes the walk order for the cumulative distribution, so a
// given random draw always lands on the same category.
var categoryOrder = []Category{
	CategoryPun,
	CategoryChallenge,
	CategoryTheme,
	CategoryPoll,
	CategoryMeme,
	CategoryShoutout,
	CategoryUGC,
}

// DefaultWeights returns the static category weights. They sum to 1.0.
func DefaultWeights() map[Category]float64 {
	return map[Category]float64{
		CategoryPun:       0.3,
		CategoryChallenge: 0.2,
		CategoryTheme:     0.2,
		CategoryPoll:      0.1,
		CategoryMeme:      0.1,
		CategoryShoutout:  0.05,
		CategoryUGC:       0.05,
	}
}

// DefaultThemes maps each weekday to its theme label, substituted when the
// draw lands on the theme category.
func DefaultThemes() map[time.Weekday]string {
	return map[time.Weekday]string{
		time.Monday:    "Motivation Monday",
		time.Tuesday:   "Ruck Tips Tuesday",
		time.Wednesday: "Wellness Wednesday",
		time.Thursday:  "Throwback Thursday",
		time.Friday:    "Fitness Friday",
		time.Saturday:  "Shout-out Saturday",
		time.Sunday:    "Ruck Fun Sunday",
	}
}

package sentiment

import (
	"strings"
	"unicode"

	"github.com/orourkera/getrucky-bot/internal/domain"
)

// Bucket thresholds. Every polarity in [-1,1] maps to exactly one bucket:
// the very_* cut points are checked before the plain ones.
const (
	veryPositiveThreshold = 0.5
	positiveThreshold     = 0.1
	negativeThreshold     = -0.1
	veryNegativeThreshold = -0.5
)

// Classifier scores text against the built-in lexicon. The zero value uses
// the default domain keywords; a custom keyword list can be supplied for
// the MentionsKeyword flag.
type Classifier struct {
	keywords []string
}

func NewClassifier(keywords []string) *Classifier {
	if len(keywords) == 0 {
		keywords = defaultKeywords
	}
	return &Classifier{keywords: keywords}
}

// Classify maps text to a sentiment bucket plus context flags.
func (c *Classifier) Classify(text string) domain.SentimentResult {
	tokens := tokenize(text)
	polarity, subjectivity := score(tokens)

	return domain.SentimentResult{
		Bucket:          BucketFor(polarity),
		Polarity:        polarity,
		Subjectivity:    subjectivity,
		IsQuestion:      isQuestion(text, tokens),
		MentionsKeyword: c.mentionsKeyword(tokens),
		HasHashtag:      strings.Contains(text, "#"),
	}
}

// BucketFor maps a polarity value to its sentiment bucket. Total over
// [-1,1]: the ordered threshold checks leave no gaps or overlaps.
func BucketFor(polarity float64) domain.SentimentBucket {
	switch {
	case polarity >= veryPositiveThreshold:
		return domain.SentimentVeryPositive
	case polarity >= positiveThreshold:
		return domain.SentimentPositive
	case polarity <= veryNegativeThreshold:
		return domain.SentimentVeryNegative
	case polarity <= negativeThreshold:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '#' && r != '@'
	})
}

// score averages lexicon polarities over matched words, honoring a single
// preceding negator or intensifier.
func score(tokens []string) (polarity, subjectivity float64) {
	var polSum, subSum float64
	matched := 0

	for i, token := range tokens {
		word := strings.TrimLeft(token, "#@")
		ws, ok := lexicon[word]
		if !ok {
			continue
		}

		pol := ws.polarity
		if i > 0 {
			prev := strings.ReplaceAll(tokens[i-1], "'", "")
			if _, negated := negators[prev]; negated {
				pol = -pol * 0.5
			} else if factor, ok := intensifiers[prev]; ok {
				pol *= factor
			}
		}

		polSum += pol
		subSum += ws.subjectivity
		matched++
	}

	if matched == 0 {
		return 0, 0
	}
	return clamp(polSum/float64(matched), -1, 1), clamp(subSum/float64(matched), 0, 1)
}

func isQuestion(text string, tokens []string) bool {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if strings.HasSuffix(trimmed, "?") {
		return true
	}
	for _, token := range tokens {
		if strings.HasPrefix(token, "@") || strings.HasPrefix(token, "#") {
			continue
		}
		_, ok := questionWords[token]
		return ok
	}
	return false
}

func (c *Classifier) mentionsKeyword(tokens []string) bool {
	for _, token := range tokens {
		word := strings.TrimLeft(token, "#@")
		for _, kw := range c.keywords {
			if word == kw {
				return true
			}
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package content

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

const weightSumEpsilon = 1e-9

// Selection is the outcome of one weighted draw. Theme is set only when the
// draw lands on the theme category and the weekday has an override.
type Selection struct {
	Category Category
	Theme    string
}

// Selector draws content categories by cumulative distribution over a fixed
// category order. The random source is injected for deterministic tests.
type Selector struct {
	mu         sync.Mutex
	rnd        *rand.Rand
	cumulative []float64
	themes     map[time.Weekday]string
}

// NewSelector validates and normalizes the weights and builds the cumulative
// distribution. Negative weights or an all-zero table are configuration
// errors.
func NewSelector(weights map[Category]float64, themes map[time.Weekday]string, rnd *rand.Rand) (*Selector, error) {
	sum := 0.0
	for _, category := range categoryOrder {
		w, ok := weights[category]
		if !ok {
			return nil, fmt.Errorf("content: missing weight for category %q", category)
		}
		if w < 0 {
			return nil, fmt.Errorf("content: negative weight %g for category %q", w, category)
		}
		sum += w
	}
	if sum <= 0 {
		return nil, fmt.Errorf("content: category weights sum to zero")
	}
	// Normalize when the configured weights drift off 1.0.
	scale := 1.0
	if math.Abs(sum-1.0) > weightSumEpsilon {
		scale = 1.0 / sum
	}

	cumulative := make([]float64, len(categoryOrder))
	acc := 0.0
	for i, category := range categoryOrder {
		acc += weights[category] * scale
		cumulative[i] = acc
	}
	// Guard against float drift leaving the last bucket short of 1.0.
	cumulative[len(cumulative)-1] = 1.0

	return &Selector{rnd: rnd, cumulative: cumulative, themes: themes}, nil
}

// Select draws one category for the given weekday.
func (s *Selector) Select(weekday time.Weekday) Selection {
	s.mu.Lock()
	draw := s.rnd.Float64()
	s.mu.Unlock()

	category := categoryOrder[len(categoryOrder)-1]
	for i, bound := range s.cumulative {
		if draw < bound {
			category = categoryOrder[i]
			break
		}
	}

	selection := Selection{Category: category}
	if category == CategoryTheme {
		selection.Theme = s.themes[weekday]
	}
	return selection
}

package sentiment

// Scored word lists for the lexicon scorer. Polarity in [-1,1],
// subjectivity in [0,1].
type wordScore struct {
	polarity     float64
	subjectivity float64
}

var lexicon = map[string]wordScore{
	// positive
	"love":       {0.8, 0.9},
	"loved":      {0.8, 0.9},
	"awesome":    {0.9, 0.9},
	"amazing":    {0.9, 0.9},
	"great":      {0.7, 0.7},
	"good":       {0.5, 0.6},
	"nice":       {0.5, 0.7},
	"fun":        {0.5, 0.6},
	"happy":      {0.6, 0.8},
	"best":       {0.8, 0.6},
	"excellent":  {0.9, 0.8},
	"fantastic":  {0.9, 0.9},
	"strong":     {0.4, 0.4},
	"motivated":  {0.6, 0.7},
	"proud":      {0.7, 0.8},
	"crushed":    {0.6, 0.7}, // "crushed my workout"
	"enjoy":      {0.5, 0.6},
	"enjoyed":    {0.5, 0.6},
	"thanks":     {0.4, 0.4},
	"thank":      {0.4, 0.4},
	"recommend":  {0.6, 0.6},
	"win":        {0.6, 0.5},
	"progress":   {0.4, 0.4},
	"better":     {0.4, 0.5},
	"helpful":    {0.6, 0.6},
	"perfect":    {0.9, 0.9},
	"excited":    {0.7, 0.8},
	"incredible": {0.9, 0.9},

	// negative
	"hate":       {-0.8, 0.9},
	"hated":      {-0.8, 0.9},
	"terrible":   {-0.9, 0.9},
	"awful":      {-0.9, 0.9},
	"horrible":   {-0.9, 0.9},
	"bad":        {-0.6, 0.6},
	"worst":      {-0.9, 0.7},
	"broken":     {-0.5, 0.4},
	"bug":        {-0.4, 0.3},
	"bugs":       {-0.4, 0.3},
	"crash":      {-0.6, 0.4},
	"crashes":    {-0.6, 0.4},
	"slow":       {-0.4, 0.5},
	"tired":      {-0.3, 0.6},
	"sore":       {-0.3, 0.6},
	"pain":       {-0.5, 0.6},
	"painful":    {-0.6, 0.7},
	"hurt":       {-0.5, 0.6},
	"hurts":      {-0.5, 0.6},
	"quit":       {-0.5, 0.5},
	"boring":     {-0.5, 0.8},
	"useless":    {-0.7, 0.8},
	"annoying":   {-0.6, 0.8},
	"frustrated": {-0.6, 0.8},
	"disappoint": {-0.6, 0.7},
	"injury":     {-0.5, 0.4},
	"failed":     {-0.5, 0.5},
	"fail":       {-0.5, 0.5},
}

// Intensifiers scale the polarity of the following lexicon word.
var intensifiers = map[string]float64{
	"very":       1.3,
	"really":     1.3,
	"so":         1.2,
	"super":      1.3,
	"absolutely": 1.4,
	"totally":    1.3,
	"extremely":  1.4,
}

// Negators flip the polarity of the following lexicon word.
var negators = map[string]struct{}{
	"not":    {},
	"no":     {},
	"never":  {},
	"dont":   {},
	"didnt":  {},
	"cant":   {},
	"wont":   {},
	"isnt":   {},
	"wasnt":  {},
	"doesnt": {},
}

// Question openers that mark a text as a question even without a trailing '?'.
var questionWords = map[string]struct{}{
	"how":    {},
	"what":   {},
	"why":    {},
	"when":   {},
	"where":  {},
	"which":  {},
	"who":    {},
	"can":    {},
	"could":  {},
	"should": {},
	"would":  {},
	"does":   {},
	"do":     {},
	"is":     {},
	"are":    {},
}

// Domain keywords checked for the MentionsKeyword flag.
var defaultKeywords = []string{"ruck", "rucking", "rucker", "rucksack", "getrucky"}

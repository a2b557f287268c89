package scam

import (
	"github.com/askwhyharsh/scamcheck/internal/rules"
	"github.com/askwhyharsh/scamcheck/pkg/logger"
)

const (
	DefaultMaxTextLength  = 10000
	DefaultMaxRuleMatches = 25
)

// Options tune the text scorer's work bounds and the unknown-age policy.
type Options struct {
	MaxTextLength  int
	MaxRuleMatches int
	AgePolicy      rules.AgePolicy
}

func DefaultOptions() Options {
	return Options{
		MaxTextLength:  DefaultMaxTextLength,
		MaxRuleMatches: DefaultMaxRuleMatches,
		AgePolicy:      rules.AgePolicyUnknown,
	}
}

// Detector scores messages and URLs against an immutable rule set. It holds
// no per-call state and is safe for concurrent use.
type Detector struct {
	rules  *rules.Set
	opts   Options
	logger logger.Logger

	// Copies taken once from rules so callers of the Set cannot change
	// what the detector matches.
	textRules      []rules.TextRule
	urlRules       []rules.URLRule
	homographs     []string
	brands         []string
	sensitivePaths []string
}

func NewDetector(set *rules.Set, opts Options, log logger.Logger) *Detector {
	def := DefaultOptions()
	if opts.MaxTextLength <= 0 {
		opts.MaxTextLength = def.MaxTextLength
	}
	if opts.MaxRuleMatches <= 0 {
		opts.MaxRuleMatches = def.MaxRuleMatches
	}
	if opts.AgePolicy == "" {
		opts.AgePolicy = def.AgePolicy
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Detector{
		rules:          set,
		opts:           opts,
		logger:         log,
		textRules:      set.TextRules(),
		urlRules:       set.URLRules(),
		homographs:     set.Homographs(),
		brands:         set.Brands(),
		sensitivePaths: set.SensitivePaths(),
	}
}

// Options returns the effective options after defaults were applied.
func (d *Detector) Options() Options {
	return d.opts
}

// Locales lists the locales with their own keyword lists.
func (d *Detector) Locales() []string {
	return d.rules.Locales()
}

// RuleCounts reports how many text and URL rules are loaded.
func (d *Detector) RuleCounts() (textRules, urlRules int) {
	return len(d.textRules), len(d.urlRules)
}

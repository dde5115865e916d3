package filter

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/webdiag/internal/options"
)

// DefaultCategory is the log_level key that sets MinLevel rather than a
// category rule.
const DefaultCategory = "default"

// Rule sets the minimum level for records of a provider and category.
// An empty Provider matches every provider. An empty Category matches every
// category; otherwise Category is a prefix, or a glob when it contains '*'.
type Rule struct {
	Provider string
	Category string
	Level    slog.Level
}

// Options decide which records reach which provider.
type Options struct {
	MinLevel slog.Level
	Rules    []Rule
}

// AddRule appends r.
func (o *Options) AddRule(r Rule) {
	o.Rules = append(o.Rules, r)
}

// Select returns the rule that applies to provider and category.
// Rules naming provider beat generic rules; among those the most specific
// category wins and later rules win ties.
func (o Options) Select(provider, category string) (Rule, bool) {
	var (
		best      Rule
		found     bool
		bestScore = -1
		bestOwned bool
	)
	for _, r := range o.Rules {
		if r.Provider != "" && r.Provider != provider {
			continue
		}
		score, ok := matchCategory(r.Category, category)
		if !ok {
			continue
		}
		owned := r.Provider != ""
		if found {
			if bestOwned && !owned {
				continue
			}
			if bestOwned == owned && score < bestScore {
				continue
			}
		}
		best, found, bestScore, bestOwned = r, true, score, owned
	}
	return best, found
}

// Level returns the effective minimum level for provider and category.
func (o Options) Level(provider, category string) slog.Level {
	if r, ok := o.Select(provider, category); ok {
		return r.Level
	}
	return o.MinLevel
}

// Enabled reports whether a record at level passes for provider and category.
func (o Options) Enabled(provider, category string, level slog.Level) bool {
	floor := o.Level(provider, category)
	return floor != LevelNone && level >= floor
}

// matchCategory reports whether pattern matches category and how specific the
// pattern is. Matching ignores case because viper lowercases map keys.
func matchCategory(pattern, category string) (int, bool) {
	if pattern == "" {
		return 0, true
	}
	pattern, category = strings.ToLower(pattern), strings.ToLower(category)
	if !strings.Contains(pattern, "*") {
		if category == pattern || strings.HasPrefix(category, pattern+".") {
			return len(pattern), true
		}
		return 0, false
	}
	g, err := compile(pattern)
	if err != nil || !g.Match(category) {
		return 0, false
	}
	return len(pattern) - strings.Count(pattern, "*"), true
}

var globs sync.Map // pattern -> glob.Glob

func compile(pattern string) (glob.Glob, error) {
	if g, ok := globs.Load(pattern); ok {
		return g.(glob.Glob), nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}
	globs.Store(pattern, g)
	return g, nil
}

// ValidPattern reports whether pattern can be used as a rule category.
func ValidPattern(pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return true
	}
	_, err := compile(strings.ToLower(pattern))
	return err == nil
}

// DefaultLevel returns the configurator every filter pipeline starts with.
func DefaultLevel() options.Configurator[Options] {
	return options.ConfiguratorFunc[Options](func(o *Options) {
		o.MinLevel = slog.LevelInfo
	})
}

// Section is the configuration view FromSection reads.
type Section interface {
	GetStringMapString(key string) map[string]string
}

// FromSection returns a configurator that reads the log_level map of s when
// options are materialized. The "default" entry sets MinLevel; every other
// entry adds a generic rule for that category. Unparseable levels are skipped.
func FromSection(s Section) options.Configurator[Options] {
	return options.ConfiguratorFunc[Options](func(o *Options) {
		levels := s.GetStringMapString("log_level")
		for _, category := range slices.Sorted(maps.Keys(levels)) {
			lvl, err := ParseLevel(levels[category])
			if err != nil {
				continue
			}
			if strings.EqualFold(category, DefaultCategory) {
				o.MinLevel = lvl
				continue
			}
			o.AddRule(Rule{Category: category, Level: lvl})
		}
	})
}

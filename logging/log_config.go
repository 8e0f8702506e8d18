package logging

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// LoggerPatternConfig sets the level of every logger whose name matches Pattern. Pattern is a
// dotted logger name in which a "*" section matches any run of characters, dots included.
type LoggerPatternConfig struct {
	Pattern string `json:"pattern"`
	Level   string `json:"level"`
}

var loggerNameSection = regexp.MustCompile(`^[a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*$`)

// Validate checks the pattern and the level.
func (lpc LoggerPatternConfig) Validate() error {
	_, err := lpc.rule()
	return err
}

type levelRule struct {
	name  *regexp.Regexp
	level Level
}

func (lpc LoggerPatternConfig) rule() (levelRule, error) {
	sections := strings.Split(lpc.Pattern, ".")
	if !lo.EveryBy(sections, func(section string) bool {
		return section == "*" || loggerNameSection.MatchString(section)
	}) {
		return levelRule{}, errors.Errorf("invalid logger pattern %q", lpc.Pattern)
	}
	level, err := LevelFromString(lpc.Level)
	if err != nil {
		return levelRule{}, err
	}
	expr := strings.ReplaceAll(regexp.QuoteMeta(lpc.Pattern), `\*`, `.*`)
	return levelRule{name: regexp.MustCompile("^" + expr + "$"), level: level}, nil
}

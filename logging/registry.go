package logging

import "sync"

// registry tracks the named loggers of one tree so that configured patterns reach loggers
// created before and after the config is read.
type registry struct {
	mu      sync.Mutex
	loggers map[string]*impl
	rules   []levelRule
}

var globalRegistry = newRegistry()

func newRegistry() *registry {
	return &registry{loggers: make(map[string]*impl)}
}

// getOrRegister returns the logger already registered under name, or registers and levels
// logger.
func (r *registry) getOrRegister(name string, logger *impl) *impl {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.loggers[name]; ok {
		return existing
	}
	r.loggers[name] = logger
	r.relevelLocked(logger)
	return logger
}

func (r *registry) lookup(name string) (*impl, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	logger, ok := r.loggers[name]
	return logger, ok
}

// update replaces the patterns and re-levels every logger. Nothing changes if any pattern is
// invalid.
func (r *registry) update(logConfig []LoggerPatternConfig) error {
	rules := make([]levelRule, 0, len(logConfig))
	for _, lpc := range logConfig {
		rule, err := lpc.rule()
		if err != nil {
			return err
		}
		rules = append(rules, rule)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = rules
	for _, logger := range r.loggers {
		r.relevelLocked(logger)
	}
	return nil
}

func (r *registry) relevel(logger *impl) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.relevelLocked(logger)
}

// relevelLocked sets the logger to the level of the last matching pattern, or to its own level.
func (r *registry) relevelLocked(logger *impl) {
	level := Level(logger.base.Load())
	if logger.name != "" {
		for _, rule := range r.rules {
			if rule.name.MatchString(logger.name) {
				level = rule.level
			}
		}
	}
	logger.level.SetLevel(level.AsZap())
}

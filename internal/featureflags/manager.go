// Package featureflags evaluates rollout flags configured as a key=value list.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags consulted by the application.
const (
	// HomeTimeline gates GET /me/feed. Off unless configured.
	HomeTimeline = "home_timeline"
	// TrendingIngest controls hashtag counting on tweet creation. On unless
	// configured off.
	TrendingIngest = "trending_ingest"
)

// defaults holds the value each known flag takes when FEATURE_FLAGS omits it.
var defaults = map[string]rule{
	HomeTimeline:   {percent: 0},
	TrendingIngest: {percent: 100},
}

// rule is a parsed flag value: a rollout percentage, where on is 100 and off
// is 0. invalid values evaluate as off but are still reported by Raw.
type rule struct {
	raw     string
	percent int
}

func parseRule(value string) rule {
	r := rule{raw: value}
	switch value {
	case "on", "true", "1":
		r.percent = 100
	case "off", "false", "0":
	default:
		if pct, ok := strings.CutSuffix(value, "%"); ok {
			if n, err := strconv.Atoi(pct); err == nil {
				r.percent = min(max(n, 0), 100)
			}
		}
	}
	return r
}

func (r rule) allows(name string, userID uint) bool {
	switch {
	case r.percent >= 100:
		return true
	case r.percent <= 0, userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < r.percent
}

// Manager evaluates feature flags configured as
// "home_timeline=25%,trending_ingest=off". Values are on/true/1,
// off/false/0 or N% for a stable per-user rollout.
type Manager struct {
	rules map[string]rule
}

// NewManager parses a comma-separated FEATURE_FLAGS value. Malformed pairs
// are skipped.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		rules[key] = parseRule(value)
	}
	return &Manager{rules: rules}
}

func (m *Manager) rule(name string) (rule, bool) {
	name = normalize(name)
	if m != nil {
		if r, ok := m.rules[name]; ok {
			return r, true
		}
	}
	r, ok := defaults[name]
	return r, ok
}

// Enabled reports whether name is on for userID. Unknown, unset flags are
// off; a nil manager only applies the defaults.
func (m *Manager) Enabled(name string, userID uint) bool {
	r, ok := m.rule(name)
	return ok && r.allows(normalize(name), userID)
}

// Disabled reports whether name is switched off for everyone.
func (m *Manager) Disabled(name string) bool {
	r, ok := m.rule(name)
	return ok && r.percent <= 0
}

// Raw returns the configured values as written, without defaults.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for k, r := range m.rules {
		out[k] = r.raw
	}
	return out
}

// Snapshot evaluates every configured and every known flag for userID.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.rules)+len(defaults))
	for name := range defaults {
		out[name] = m.Enabled(name, userID)
	}
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", name, userID)
	return int(h.Sum32() % 100)
}

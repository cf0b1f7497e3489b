// Package testdata loads JSON test-data files and resolves the date tokens
// embedded in their string values, so fixtures never go stale.
package testdata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ui-harness/pkg/apperr"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Clock supplies the current time. Tests inject a fixed clock so token
// resolution is deterministic.
type Clock func() time.Time

var weekdays = map[string]time.Weekday{
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
	"SUNDAY":    time.Sunday,
}

// tokenPattern matches <TOKEN> markers inside larger strings, so values like
// "Report <TODAY>.pdf" resolve in place.
var tokenPattern = regexp.MustCompile(`<([A-Z_0-9]+)>`)

// offsetPattern captures <PLUS_3_DAYS> and <MINUS_2_WEEKS> style tokens.
// Singular unit names are accepted.
var offsetPattern = regexp.MustCompile(`^(PLUS|MINUS)_(\d+)_(DAYS?|WEEKS?|MONTHS?|YEARS?)$`)

// DateResolver turns date tokens into formatted dates.
type DateResolver struct {
	clock  Clock
	layout string
}

type DateOption func(*DateResolver)

func WithClock(clock Clock) DateOption {
	return func(r *DateResolver) {
		r.clock = clock
	}
}

func WithLayout(layout string) DateOption {
	return func(r *DateResolver) {
		r.layout = layout
	}
}

func NewDateResolver(opts ...DateOption) *DateResolver {
	r := &DateResolver{
		clock:  time.Now,
		layout: DateLayout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve replaces every recognized token in the value. Unknown tokens pass
// through untouched: they may be markers for another layer.
func (r *DateResolver) Resolve(value string) string {
	return tokenPattern.ReplaceAllStringFunc(value, func(match string) string {
		token := strings.Trim(match, "<>")

		resolved, ok := r.resolveToken(token)
		if !ok {
			return match
		}

		return resolved
	})
}

func (r *DateResolver) resolveToken(token string) (string, bool) {
	now := r.clock()

	switch token {
	case "TODAY":
		return now.Format(r.layout), true
	case "NOW":
		return now.Format(DateTimeLayout), true
	case "YESTERDAY":
		return now.AddDate(0, 0, -1).Format(r.layout), true
	case "TOMORROW":
		return now.AddDate(0, 0, 1).Format(r.layout), true
	}

	if weekday, ok := strings.CutPrefix(token, "NEXT_"); ok {
		if day, known := weekdays[weekday]; known {
			return nextWeekday(now, day).Format(r.layout), true
		}
	}

	if m := offsetPattern.FindStringSubmatch(token); m != nil {
		return r.offset(now, m[1], m[2], m[3]).Format(r.layout), true
	}

	return "", false
}

// nextWeekday finds the next strictly future occurrence: asking for the
// current weekday yields the one a week ahead.
func nextWeekday(from time.Time, day time.Weekday) time.Time {
	delta := (int(day) - int(from.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}

	return from.AddDate(0, 0, delta)
}

func (r *DateResolver) offset(now time.Time, direction, amount, unit string) time.Time {
	n, _ := strconv.Atoi(amount)
	if direction == "MINUS" {
		n = -n
	}

	switch strings.TrimSuffix(unit, "S") {
	case "DAY":
		return now.AddDate(0, 0, n)
	case "WEEK":
		return now.AddDate(0, 0, 7*n)
	case "MONTH":
		return now.AddDate(0, n, 0)
	default:
		return now.AddDate(n, 0, 0)
	}
}

// ResolveStrict is Resolve for callers that treat unresolved angle-bracket
// tokens as an error rather than a passthrough.
func (r *DateResolver) ResolveStrict(value string) (string, error) {
	const op = "testdata.ResolveStrict"

	var unresolved []string

	resolved := tokenPattern.ReplaceAllStringFunc(value, func(match string) string {
		token := strings.Trim(match, "<>")

		out, ok := r.resolveToken(token)
		if !ok {
			unresolved = append(unresolved, token)

			return match
		}

		return out
	})

	if len(unresolved) > 0 {
		return "", apperr.Wrap(op, apperr.CodeInvalidParameter, fmt.Errorf("unresolved tokens: %s", strings.Join(unresolved, ", ")), map[string]any{
			apperr.MetaReason: "unknown_token",
			apperr.MetaStage:  apperr.StageTestData,
		})
	}

	return resolved, nil
}

package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-analytics/analytics"
	"pos-analytics/dashboard"
)

var errRangeUsage = errors.New("usage: /range today|yesterday|week|month|year or /range 2026-01-01 2026-01-31")

// sectionCommands maps chat commands to dashboard sections.
var sectionCommands = map[string]dashboard.Section{
	"overview":  dashboard.SectionOverview,
	"sales":     dashboard.SectionSales,
	"inventory": dashboard.SectionInventory,
	"staff":     dashboard.SectionEmployees,
	"finance":   dashboard.SectionFinancial,
	"customers": dashboard.SectionCustomers,
}

// parseCommand splits "/cmd@bot a b" into "cmd" and its arguments.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), fields[1:]
}

// rangeChoice is what a chat asked for with /range. Named keys are resolved
// again on every load so "today" rolls over at midnight.
type rangeChoice struct {
	key    analytics.RangeKey
	custom analytics.Range
}

func (c rangeChoice) resolve(now time.Time) (analytics.Range, error) {
	if c.key == analytics.RangeCustom {
		return c.custom, nil
	}
	return analytics.Resolve(c.key, now)
}

// parseRange reads a named range or two dates. The end date covers its
// whole day.
func parseRange(args []string, loc *time.Location) (rangeChoice, error) {
	switch len(args) {
	case 1:
		key := analytics.RangeKey(strings.ToLower(args[0]))
		if _, err := analytics.Resolve(key, time.Now()); err != nil {
			return rangeChoice{}, errRangeUsage
		}
		return rangeChoice{key: key}, nil
	case 2:
		start, err := time.ParseInLocation(dateLayout, args[0], loc)
		if err != nil {
			return rangeChoice{}, fmt.Errorf("start date: %w", errRangeUsage)
		}
		end, err := time.ParseInLocation(dateLayout, args[1], loc)
		if err != nil {
			return rangeChoice{}, fmt.Errorf("end date: %w", errRangeUsage)
		}
		if end.Before(start) {
			return rangeChoice{}, fmt.Errorf("end date %s is before start %s", args[1], args[0])
		}
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		return rangeChoice{key: analytics.RangeCustom, custom: analytics.Custom(start, end)}, nil
	}
	return rangeChoice{}, errRangeUsage
}

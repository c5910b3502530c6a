package services

import (
	"fmt"
	"sort"
	"time"

	"programscheduler/internal/domain"
)

// maxGeneratedDays bounds a single generation run.
const maxGeneratedDays = 366

// dateTitleLayout is used by the "date" title format.
const dateTitleLayout = "Monday, January 2, 2006"

// GenerateDays returns the dates to create for event under opts, in ascending
// order, skipping dates listed in existing. SortOrder and "Day N" titles use the
// 1-based position among the dates considered in this run, existing ones included,
// so a re-run titles the same date the same way.
func GenerateDays(event *domain.Event, opts domain.GenerateDaysOptions, existing []time.Time) ([]domain.GeneratedDay, error) {
	start, end := domain.DateOf(event.StartDate), domain.DateOf(event.EndDate)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: event ends before it starts", domain.ErrInvalidRange)
	}
	format := opts.TitleFormat
	if format == "" {
		format = domain.TitleFormatDayNumber
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: unknown title format %q", domain.ErrInvalidInput, format)
	}

	var candidates []candidateDay
	switch opts.Strategy {
	case domain.StrategyAllDays, domain.StrategyBusinessDays:
		if days := int(end.Sub(start).Hours()/24) + 1; days > maxGeneratedDays {
			return nil, fmt.Errorf("%w: event spans %d days, at most %d can be generated", domain.ErrInvalidInput, days, maxGeneratedDays)
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if opts.Strategy == domain.StrategyBusinessDays && isWeekend(d) {
				continue
			}
			candidates = append(candidates, candidateDay{date: d, titleIndex: len(candidates)})
		}
	case domain.StrategyCustom:
		candidates = customDates(event, opts.CustomDates)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidInput, opts.Strategy)
	}

	skip := make(map[time.Time]struct{}, len(existing))
	for _, d := range existing {
		skip[domain.DateOf(d)] = struct{}{}
	}

	out := []domain.GeneratedDay{}
	for i, c := range candidates {
		if _, ok := skip[c.date]; ok {
			continue
		}
		out = append(out, domain.GeneratedDay{
			Date:      c.date,
			Title:     dayTitle(format, c, i, opts.CustomTitles),
			SortOrder: i + 1,
		})
	}
	return out, nil
}

// candidateDay is a date considered by a run. titleIndex points into
// CustomTitles: the caller's list position for custom dates, the run position
// otherwise.
type candidateDay struct {
	date       time.Time
	titleIndex int
}

// customDates keeps caller dates inside the event range, deduplicated and sorted.
// Out-of-range dates are dropped silently. The first occurrence of a date keeps
// its input index.
func customDates(event *domain.Event, dates []time.Time) []candidateDay {
	seen := make(map[time.Time]struct{}, len(dates))
	var out []candidateDay
	for i, d := range dates {
		d = domain.DateOf(d)
		if !event.ContainsDate(d) {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, candidateDay{date: d, titleIndex: i})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].date.Before(out[j].date) })
	return out
}

func dayTitle(format domain.DayTitleFormat, c candidateDay, position int, custom []string) string {
	switch format {
	case domain.TitleFormatDate:
		return c.date.Format(dateTitleLayout)
	case domain.TitleFormatCustom:
		if c.titleIndex < len(custom) && custom[c.titleIndex] != "" {
			return custom[c.titleIndex]
		}
	}
	return fmt.Sprintf("Day %d", position+1)
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

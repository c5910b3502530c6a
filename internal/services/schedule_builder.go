package services

import (
	"sort"

	"programscheduler/internal/domain"
)

// BuildDaySchedule groups the day's sessions into time-slot buckets keyed by
// their "HH:MM" start time. Buckets are ordered by key; inside a bucket sessions
// keep (start_time, sort_order) order, with venue sort order as a tiebreak.
// Sessions whose venue is not among venues are left out.
func BuildDaySchedule(
	day *domain.EventDay,
	venues []*domain.Venue,
	sessions []*domain.ProgramSession,
	categories map[string]*domain.ProgramSessionCategory,
	presentationCounts map[string]int,
) *domain.DaySchedule {
	sortedVenues := make([]*domain.Venue, len(venues))
	copy(sortedVenues, venues)
	sort.SliceStable(sortedVenues, func(i, j int) bool {
		return sortedVenues[i].SortOrder < sortedVenues[j].SortOrder
	})

	venueSummaries := make([]domain.VenueSummary, 0, len(sortedVenues))
	byID := make(map[string]domain.VenueSummary, len(sortedVenues))
	for _, v := range sortedVenues {
		vs := domain.VenueSummary{
			ID:          v.ID,
			Name:        v.Name,
			DisplayName: v.Label(),
			Capacity:    v.Capacity,
			Color:       v.Color,
			SortOrder:   v.SortOrder,
		}
		venueSummaries = append(venueSummaries, vs)
		byID[v.ID] = vs
	}

	ordered := make([]*domain.ProgramSession, 0, len(sessions))
	for _, s := range sessions {
		if _, ok := byID[s.VenueID]; ok {
			ordered = append(ordered, s)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return byID[a.VenueID].SortOrder < byID[b.VenueID].SortOrder
	})

	buckets := make(map[string][]domain.SessionSummary)
	for _, s := range ordered {
		key := s.StartTime.Key()
		buckets[key] = append(buckets[key], summarize(s, byID[s.VenueID], categories, presentationCounts))
	}
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	slots := make([]domain.TimeSlot, 0, len(keys))
	for _, k := range keys {
		slots = append(slots, domain.TimeSlot{StartTime: k, Sessions: buckets[k]})
	}

	return &domain.DaySchedule{
		EventDay: domain.EventDaySummary{
			ID:        day.ID,
			EventID:   day.EventID,
			Date:      day.Date,
			Title:     day.Title,
			SortOrder: day.SortOrder,
		},
		Venues:    venueSummaries,
		TimeSlots: slots,
	}
}

func summarize(s *domain.ProgramSession, venue domain.VenueSummary, categories map[string]*domain.ProgramSessionCategory, presentationCounts map[string]int) domain.SessionSummary {
	sum := domain.SessionSummary{
		ID:                s.ID,
		Title:             s.Title,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		Type:              s.Type,
		IsBreak:           s.IsBreak,
		IsFeatured:        s.IsFeatured,
		SortOrder:         s.SortOrder,
		Venue:             venue,
		ModeratorCount:    len(s.ModeratorIDs),
		PresentationCount: presentationCounts[s.ID],
	}
	if len(s.CategoryIDs) > 0 {
		if c, ok := categories[s.CategoryIDs[0]]; ok {
			sum.Category = &domain.CategorySummary{ID: c.ID, Name: c.Name, Color: c.Color}
		}
	}
	return sum
}

package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"programscheduler/internal/domain"
)

func date(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func dates(days []domain.GeneratedDay) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Date.Format(domain.DateLayout))
	}
	return out
}

func TestGenerateDays_Strategies(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		end    string
		opts   domain.GenerateDaysOptions
		want   []string
		orders []int
	}{
		{
			name:   "all days",
			start:  "2025-06-15",
			end:    "2025-06-17",
			opts:   domain.GenerateDaysOptions{Strategy: domain.StrategyAllDays},
			want:   []string{"2025-06-15", "2025-06-16", "2025-06-17"},
			orders: []int{1, 2, 3},
		},
		{
			name:   "business days skip the weekend",
			start:  "2025-06-14",
			end:    "2025-06-17",
			opts:   domain.GenerateDaysOptions{Strategy: domain.StrategyBusinessDays},
			want:   []string{"2025-06-16", "2025-06-17"},
			orders: []int{1, 2},
		},
		{
			name:  "custom drops out of range and duplicates",
			start: "2025-06-15",
			end:   "2025-06-17",
			opts: domain.GenerateDaysOptions{
				Strategy:    domain.StrategyCustom,
				CustomDates: []time.Time{date("2025-06-17"), date("2025-06-20"), date("2025-06-15"), date("2025-06-17")},
			},
			want:   []string{"2025-06-15", "2025-06-17"},
			orders: []int{1, 2},
		},
		{
			name:   "single day event",
			start:  "2025-06-15",
			end:    "2025-06-15",
			opts:   domain.GenerateDaysOptions{Strategy: domain.StrategyAllDays},
			want:   []string{"2025-06-15"},
			orders: []int{1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := domain.NewEvent("org", "Conf", date(tt.start), date(tt.end), time.Now(), time.Now())
			got, err := GenerateDays(event, tt.opts, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, dates(got))
			orders := make([]int, 0, len(got))
			for _, d := range got {
				orders = append(orders, d.SortOrder)
			}
			assert.Equal(t, tt.orders, orders)
		})
	}
}

func TestGenerateDays_SkipsExisting(t *testing.T) {
	event := domain.NewEvent("org", "Conf", date("2025-06-15"), date("2025-06-17"), time.Now(), time.Now())
	opts := domain.GenerateDaysOptions{Strategy: domain.StrategyAllDays}

	first, err := GenerateDays(event, opts, nil)
	require.NoError(t, err)
	existing := make([]time.Time, 0, len(first))
	for _, d := range first {
		existing = append(existing, d.Date)
	}

	again, err := GenerateDays(event, opts, existing)
	require.NoError(t, err)
	assert.Empty(t, again)

	partial, err := GenerateDays(event, opts, existing[:1])
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06-16", "2025-06-17"}, dates(partial))
	assert.Equal(t, "Day 2", partial[0].Title)
	assert.Equal(t, 2, partial[0].SortOrder)
}

func TestGenerateDays_Titles(t *testing.T) {
	event := domain.NewEvent("org", "Conf", date("2025-06-15"), date("2025-06-16"), time.Now(), time.Now())

	got, err := GenerateDays(event, domain.GenerateDaysOptions{Strategy: domain.StrategyAllDays, TitleFormat: domain.TitleFormatDate}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sunday, June 15, 2025", got[0].Title)

	got, err = GenerateDays(event, domain.GenerateDaysOptions{
		Strategy:     domain.StrategyAllDays,
		TitleFormat:  domain.TitleFormatCustom,
		CustomTitles: []string{"Workshops"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Workshops", got[0].Title)
	assert.Equal(t, "Day 2", got[1].Title)

	got, err = GenerateDays(event, domain.GenerateDaysOptions{Strategy: domain.StrategyAllDays}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Day 1", got[0].Title)
}

func TestGenerateDays_Errors(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		opts    domain.GenerateDaysOptions
		wantErr error
	}{
		{name: "end before start", start: "2025-06-17", end: "2025-06-15", opts: domain.GenerateDaysOptions{Strategy: domain.StrategyAllDays}, wantErr: domain.ErrInvalidRange},
		{name: "unknown strategy", start: "2025-06-15", end: "2025-06-17", opts: domain.GenerateDaysOptions{Strategy: "weekly"}, wantErr: domain.ErrInvalidInput},
		{name: "unknown title format", start: "2025-06-15", end: "2025-06-17", opts: domain.GenerateDaysOptions{Strategy: domain.StrategyAllDays, TitleFormat: "roman"}, wantErr: domain.ErrInvalidInput},
		{name: "span too long", start: "2025-01-01", end: "2027-01-01", opts: domain.GenerateDaysOptions{Strategy: domain.StrategyAllDays}, wantErr: domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := domain.NewEvent("org", "Conf", date(tt.start), date(tt.end), time.Now(), time.Now())
			_, err := GenerateDays(event, tt.opts, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestGenerateDays_CustomTitlesFollowInputOrder(t *testing.T) {
	event := domain.NewEvent("org", "Conf", date("2025-06-15"), date("2025-06-17"), time.Now(), time.Now())

	got, err := GenerateDays(event, domain.GenerateDaysOptions{
		Strategy:     domain.StrategyCustom,
		CustomDates:  []time.Time{date("2025-06-17"), date("2025-06-30"), date("2025-06-15"), date("2025-06-16")},
		TitleFormat:  domain.TitleFormatCustom,
		CustomTitles: []string{"Closing", "Never used", "Opening"},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"2025-06-15", "2025-06-16", "2025-06-17"}, dates(got))
	assert.Equal(t, "Opening", got[0].Title)
	assert.Equal(t, "Day 2", got[1].Title)
	assert.Equal(t, "Closing", got[2].Title)
	assert.Equal(t, 3, got[2].SortOrder)
}

package sessionize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"programscheduler/internal/domain"
)

const gridJSON = `[
  {
    "date": "2025-06-15T00:00:00",
    "rooms": [
      {
        "id": 101,
        "name": "Hall A",
        "sessions": [
          {
            "id": "4711",
            "title": "Keynote",
            "description": null,
            "startsAt": "2025-06-15T09:00:00",
            "endsAt": "2025-06-15T10:00:00",
            "isServiceSession": false,
            "isPlenumSession": true,
            "roomId": 101
          }
        ]
      }
    ]
  }
]`

func TestHTTPFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		status     int
		body       string
		wantErrIs  error
		wantErr    bool
		wantTitles []string
	}{
		{name: "grid", id: "abc123", status: http.StatusOK, body: gridJSON, wantTitles: []string{"Keynote"}},
		{name: "unknown event", id: "nope", status: http.StatusNotFound, wantErrIs: domain.ErrNotFound, wantErr: true},
		{name: "server error", id: "abc123", status: http.StatusBadGateway, wantErr: true},
		{name: "bad json", id: "abc123", status: http.StatusOK, body: `{"rooms":`, wantErr: true},
		{name: "empty id", id: "", wantErrIs: domain.ErrInvalidInput, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			grid, err := NewHTTPFetcher(srv.Client(), srv.URL+"/").Fetch(context.Background(), tt.id)
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrIs != nil {
					require.ErrorIs(t, err, tt.wantErrIs)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "/api/v2/"+tt.id+"/view/GridSmart", gotPath)
			require.Len(t, grid, 1)
			room := grid[0].Rooms[0]
			assert.Equal(t, "Hall A", room.Name)
			var titles []string
			for _, s := range room.Sessions {
				titles = append(titles, s.Title)
				assert.Equal(t, clockAt("09:00"), s.StartsAt.ClockTime())
				assert.True(t, s.IsPlenumSession)
				assert.Nil(t, s.Description)
			}
			assert.Equal(t, tt.wantTitles, titles)
		})
	}
}

// clockAt parses a literal time of day for fixtures.
func clockAt(s string) domain.ClockTime {
	c, err := domain.ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

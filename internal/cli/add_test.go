package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/eventscope/internal/storage"
)

func TestAdd_SingleDay(t *testing.T) {
	store, _ := openTestStore(t)
	cmd := &AddCommand{Title: "  Dentist ", Start: "2024-03-12", globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(store, testRuntime(t)))
	})

	assert.Contains(t, output, "Added event EVT-")
	assert.Contains(t, output, "Title: Dentist")
	assert.Contains(t, output, "Dates: 2024-03-12 .. 2024-03-12")
}

func TestAdd_JSON(t *testing.T) {
	store, _ := openTestStore(t)
	cmd := &AddCommand{
		Title:    "Retreat",
		Start:    "2024-06-01",
		End:      "2024-06-07",
		Location: "Lakeside",
		globals:  &GlobalFlags{JSON: true},
	}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(store, testRuntime(t)))
	})

	var got eventJSON
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.True(t, strings.HasPrefix(got.ID, "EVT-"))
	assert.Equal(t, "2024-06-01", got.StartDate)
	assert.Equal(t, "2024-06-07", got.EndDate)
	assert.Equal(t, "Lakeside", got.Location)
	assert.Equal(t, "manual", got.Source)

	stored, err := store.GetEvent(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, "Retreat", stored.Title)
}

func TestAdd_RejectsBadDates(t *testing.T) {
	store, _ := openTestStore(t)
	rt := testRuntime(t)

	tests := []struct {
		name  string
		start string
		end   string
		want  string
	}{
		{"malformed start", "2024/03/12", "", "--start must be YYYY-MM-DD"},
		{"impossible start", "2023-02-29", "", "--start must be YYYY-MM-DD"},
		{"malformed end", "2024-03-12", "soon", "--end must be YYYY-MM-DD"},
		{"end before start", "2024-03-12", "2024-03-11", "is before --start"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := &AddCommand{Title: "x", Start: tc.start, End: tc.end, globals: &GlobalFlags{}}
			err := cmd.executeWithStore(store, rt)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	stats, err := store.GetStats(context.Background(), rt.today())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalEvents)
}

func TestRemove(t *testing.T) {
	store, _ := openTestStore(t)
	id := seedEvent(t, store, "Gone soon", "2024-01-01", "2024-01-01")
	cmd := &RemoveCommand{ID: id, globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(store, testRuntime(t)))
	})
	assert.Contains(t, output, "Removed event "+id)

	_, err := store.GetEvent(context.Background(), id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRemove_Missing(t *testing.T) {
	store, _ := openTestStore(t)
	cmd := &RemoveCommand{ID: "EVT-nope", globals: &GlobalFlags{}}

	err := cmd.executeWithStore(store, testRuntime(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no event with id EVT-nope")
}

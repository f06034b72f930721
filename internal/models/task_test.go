package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2024-01-02", want: NewDate(2024, 1, 2)},
		{in: "  2024-12-31 ", want: NewDate(2024, 12, 31)},
		{in: "Tue Jan 2 2024", want: NewDate(2024, 1, 2)},
		{in: "Fri Nov 15 2024", want: NewDate(2024, 11, 15)},
		{in: "02/01/2024", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestDateOfDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	at := time.Date(2024, 3, 5, 23, 30, 0, 0, loc)

	d := DateOf(at)
	assert.Equal(t, NewDate(2024, 3, 5), d)
	assert.Equal(t, "2024-03-05", FormatDate(d))
	assert.Equal(t, "", FormatDate(time.Time{}))
}

func TestLabel(t *testing.T) {
	task := Task{ID: 3, Date: NewDate(2024, 1, 2), Title: "Buy milk", Description: "2L"}
	row := task.Summary()

	assert.Equal(t, DisplayRow{ID: 3, Date: NewDate(2024, 1, 2), Title: "Buy milk"}, row)
	assert.Equal(t, "2024-01-02 - Buy milk", row.Label())
	assert.Equal(t, " - untitled", DisplayRow{Title: "untitled"}.Label())
}

func TestTaskJSON(t *testing.T) {
	task := Task{ID: 7, Date: NewDate(2024, 1, 2), Title: "T", Description: "D"}

	data, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"date":"2024-01-02","title":"T","description":"D"}`, string(data))

	var back Task
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, task, back)

	rows, err := json.Marshal([]DisplayRow{{ID: 1, Title: "no date"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"date":"","title":"no date"}]`, string(rows))

	assert.Error(t, json.Unmarshal([]byte(`{"id":1,"date":"tomorrow"}`), &back))
}

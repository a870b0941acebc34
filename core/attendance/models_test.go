package attendance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name    string
		present int
		total   int
		want    null.Float64
	}{
		{name: "nothing recorded", present: 0, total: 0, want: null.Float64{}},
		{name: "never present", present: 0, total: 4, want: null.Float64From(0)},
		{name: "7 of 10", present: 7, total: 10, want: null.Float64From(70)},
		{name: "always present", present: 18, total: 18, want: null.Float64From(100)},
		{name: "rounded to 2 places", present: 1, total: 3, want: null.Float64From(33.33)},
		{name: "rounded up", present: 2, total: 3, want: null.Float64From(66.67)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentage(tt.present, tt.total))
		})
	}
}

func TestReportRowJSON(t *testing.T) {
	row := ReportRow{StudentID: 1, StudentName: "Ana", GroupID: 2, GroupName: "A"}
	data, err := json.Marshal(row)
	if assert.NoError(t, err) {
		assert.Contains(t, string(data), `"attendance_percentage":null`)
	}
}

func TestFlag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		data    string
		want    Flag
		wantErr bool
	}{
		{data: `true`, want: true},
		{data: `false`, want: false},
		{data: `1`, want: true},
		{data: `0`, want: false},
		{data: `null`, want: false},
		{data: `"yes"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			var nr NewRecord
			err := json.Unmarshal([]byte(`{"student_id":1,"class_id":1,"present":`+tt.data+`}`), &nr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			if assert.NoError(t, err) {
				assert.Equal(t, tt.want, nr.Present)
			}
		})
	}
}

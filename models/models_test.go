package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromMapDefaults(t *testing.T) {
	r := FromMap(map[string]string{KeyDescription: "написать отчет"})

	assert.Equal(t, "", r.Date)
	assert.Equal(t, "", r.Time)
	assert.Equal(t, DefaultTaskType, r.TaskType)
	assert.Equal(t, DefaultDifficulty, r.Difficulty)
	assert.Equal(t, "написать отчет", r.Description)
}

func TestToMapFromMapLossless(t *testing.T) {
	r := Record{
		Date:        "01.01.2024",
		Time:        "09:00",
		Weekday:     "пн",
		PartOfDay:   "Утро",
		TaskType:    "Л",
		Description: "desc1",
		Difficulty:  "high",
	}
	m := r.ToMap()
	assert.Len(t, m, NumFields)
	for _, k := range Keys {
		assert.Contains(t, m, k)
	}
	assert.Equal(t, r, FromMap(m))
}

func TestFromRow(t *testing.T) {
	r := FromRow([]string{"01.01.2024", "09:00", "пн", "Утро", "", "desc", ""})
	assert.Equal(t, DefaultTaskType, r.TaskType)
	assert.Equal(t, DefaultDifficulty, r.Difficulty)
	assert.Equal(t, "desc", r.Description)

	r = FromRow([]string{"01.01.2024"})
	assert.Equal(t, "01.01.2024", r.Date)
	assert.Equal(t, "", r.Description)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Record{Description: "  \n\t"}.Validate(), ErrEmptyDescription)
	assert.NoError(t, Record{Description: " x "}.Validate())
}

func TestRowSerialization(t *testing.T) {
	tests := []struct {
		name       string
		rec        Record
		wantDesc   string
		wantDiffic any
	}{
		{"numeric difficulty", Record{Description: "a", Difficulty: "3"}, "a", 3},
		{"text difficulty", Record{Description: "a", Difficulty: "high"}, "a", "high"},
		{"newlines flattened", Record{Description: "line1\nline2\r\nline3", Difficulty: "0"}, "line1 line2  line3", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := tt.rec.Row()
			assert.Len(t, row, NumFields)
			assert.Equal(t, tt.wantDesc, row[5])
			assert.Equal(t, tt.wantDiffic, row[6])
		})
	}
}

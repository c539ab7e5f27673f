package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestColumns_Ordering(t *testing.T) {
	a := NewEnvironmentalSample(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	a.Set(ColumnWaterTemp, 12.5)
	a.Set("Turbidity", 3)
	b := NewEnvironmentalSample(time.Date(2024, 5, 1, 0, 15, 0, 0, time.UTC))
	b.Set(ColumnFlow, 120)
	b.Set(ChangeColumn(ColumnFlow), 2)

	got := Columns([]EnvironmentalSample{a, b})
	assert.Equal(t, []string{ColumnFlow, ChangeColumn(ColumnFlow), ColumnWaterTemp, "Turbidity"}, got)
}

func TestEnvironmentalSample_CloneIsDeep(t *testing.T) {
	a := NewEnvironmentalSample(time.Now())
	a.Set(ColumnFlow, 1)
	b := a.Clone()
	b.Set(ColumnFlow, 2)

	v, ok := a.Get(ColumnFlow)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestSamplesForDay(t *testing.T) {
	loc, _ := time.LoadLocation("America/Chicago")
	samples := []EnvironmentalSample{
		{DateTime: time.Date(2024, 5, 1, 0, 0, 0, 0, loc)},
		{DateTime: time.Date(2024, 5, 1, 23, 45, 0, 0, loc)},
		{DateTime: time.Date(2024, 5, 2, 0, 0, 0, 0, loc)},
	}
	got := SamplesForDay(samples, time.Date(2024, 5, 1, 12, 0, 0, 0, loc))
	assert.Len(t, got, 2)
}

func TestColumnForParam(t *testing.T) {
	assert.Equal(t, "Gage Height (ft)", ColumnForParam(ParamGageHeight))
	assert.Equal(t, "99999", ColumnForParam("99999"))
}

func TestCompassDirection(t *testing.T) {
	tests := map[float64]string{0: "N", 22.5: "NNE", 90: "E", 200: "SSW", 350: "N", -90: "W"}
	for deg, want := range tests {
		assert.Equal(t, want, CompassDirection(deg), "deg %v", deg)
	}
}

package prayer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Nixie-Tech-LLC/muezzin/internal/model"
)

func TestComputeDurationBase(t *testing.T) {
	cases := []struct {
		prayer model.Prayer
		want   int
	}{
		{model.PrayerFajr, 12},
		{model.PrayerDhuhr, 15},
		{model.PrayerAsr, 10},
		{model.PrayerMaghrib, 8},
		{model.PrayerIsha, 18},
	}
	for _, tc := range cases {
		got := ComputeDuration(tc.prayer, model.MethodMWL, time.Monday, false)
		assert.Equal(t, tc.want, got, "base duration for %s", tc.prayer)
	}
}

func TestComputeDurationMethodOverrides(t *testing.T) {
	assert.Equal(t, 15, ComputeDuration(model.PrayerFajr, model.MethodMakkah, time.Monday, false))
	assert.Equal(t, 20, ComputeDuration(model.PrayerIsha, model.MethodMakkah, time.Monday, false))
	assert.Equal(t, 10, ComputeDuration(model.PrayerFajr, model.MethodEgypt, time.Monday, false))
	assert.Equal(t, 20, ComputeDuration(model.PrayerDhuhr, model.MethodJafari, time.Monday, false))
	assert.Equal(t, 15, ComputeDuration(model.PrayerMaghrib, model.MethodJafari, time.Monday, false))

	// methods with no override table fall through to base
	assert.Equal(t, 12, ComputeDuration(model.PrayerFajr, model.MethodISNA, time.Monday, false))
	assert.Equal(t, 12, ComputeDuration(model.PrayerFajr, model.CalculationMethod("UNKNOWN"), time.Monday, false))
}

func TestComputeDurationFridayDhuhr(t *testing.T) {
	// friday dhuhr is 30 regardless of method
	for _, method := range []model.CalculationMethod{
		model.MethodMWL, model.MethodISNA, model.MethodMakkah, model.MethodJafari,
	} {
		assert.Equal(t, 30, ComputeDuration(model.PrayerDhuhr, method, time.Friday, false),
			"friday dhuhr for %s", method)
	}

	// other prayers are untouched on friday
	assert.Equal(t, 12, ComputeDuration(model.PrayerFajr, model.MethodMWL, time.Friday, false))
}

func TestComputeDurationRamadanIsha(t *testing.T) {
	// ramadan isha is 45 regardless of method or weekday
	assert.Equal(t, 45, ComputeDuration(model.PrayerIsha, model.MethodMWL, time.Monday, true))
	assert.Equal(t, 45, ComputeDuration(model.PrayerIsha, model.MethodMakkah, time.Friday, true))

	// ramadan does not touch dhuhr, the friday rule still wins there
	assert.Equal(t, 30, ComputeDuration(model.PrayerDhuhr, model.MethodMWL, time.Friday, true))
	assert.Equal(t, 15, ComputeDuration(model.PrayerDhuhr, model.MethodMWL, time.Monday, true))
}

func TestComputeDurationIsPure(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, 30, ComputeDuration(model.PrayerDhuhr, model.MethodMWL, time.Friday, false))
	}
}

func TestAllDurations(t *testing.T) {
	got := AllDurations(model.MethodEgypt, time.Friday, true)
	assert.Equal(t, map[string]int{
		"fajr":    10,
		"dhuhr":   30,
		"asr":     10,
		"maghrib": 8,
		"isha":    45,
	}, got)
}

func TestIsRamadanStub(t *testing.T) {
	assert.False(t, IsRamadan(time.Now()))
}

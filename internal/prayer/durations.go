package prayer

import (
	"strings"
	"time"

	"github.com/Nixie-Tech-LLC/muezzin/internal/model"
)

// base mute durations in minutes
var baseDurations = map[model.Prayer]int{
	model.PrayerFajr:    12,
	model.PrayerDhuhr:   15,
	model.PrayerAsr:     10,
	model.PrayerMaghrib: 8,
	model.PrayerIsha:    18,
}

// jummah prayer with khutbah runs long
const fridayDhuhrMinutes = 30

// isha plus tarawih during ramadan
const ramadanIshaMinutes = 45

// regional customs per calculation method
var methodDurations = map[model.CalculationMethod]map[model.Prayer]int{
	model.MethodMakkah: {
		model.PrayerFajr: 15,
		model.PrayerIsha: 20,
	},
	model.MethodEgypt: {
		model.PrayerFajr: 10,
		model.PrayerIsha: 15,
	},
	model.MethodJafari: {
		model.PrayerDhuhr:   20,
		model.PrayerMaghrib: 15,
	},
}

// ComputeDuration resolves the mute duration in minutes for a prayer.
// Precedence, highest wins: base, method override, friday dhuhr, ramadan isha.
// Unknown method/prayer pairs fall through to the base value.
func ComputeDuration(p model.Prayer, method model.CalculationMethod, weekday time.Weekday, isRamadan bool) int {
	duration := baseDurations[p]

	if overrides, ok := methodDurations[method]; ok {
		if d, ok := overrides[p]; ok {
			duration = d
		}
	}

	if weekday == time.Friday && p == model.PrayerDhuhr {
		duration = fridayDhuhrMinutes
	}

	if isRamadan && p == model.PrayerIsha {
		duration = ramadanIshaMinutes
	}

	return duration
}

// AllDurations resolves every mutable prayer's duration for one context,
// keyed by lowercase prayer name.
func AllDurations(method model.CalculationMethod, weekday time.Weekday, isRamadan bool) map[string]int {
	out := make(map[string]int, len(model.MutablePrayers))
	for _, p := range model.MutablePrayers {
		out[strings.ToLower(string(p))] = ComputeDuration(p, method, weekday, isRamadan)
	}
	return out
}

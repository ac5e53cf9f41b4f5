package prayer

import "time"

// IsRamadan reports whether the given date falls in Ramadan.
//
// Not implemented yet: a correct answer needs a Hijri calendar computation
// or an external lookup table, and guessing date ranges here would fire
// mutes on the wrong days. Until that lands, ramadan-only schedules never
// trigger.
// TODO: back this with a Hijri calendar source.
func IsRamadan(date time.Time) bool {
	return false
}

package model

import "time"

// PrayerTimes is one day of fetched clock-events for a schedule, keyed by
// (schedule_id, date). Times are absolute UTC instants; a nil field means
// the calculation service returned nothing parseable for that event.
type PrayerTimes struct {
	ID         int        `db:"id" json:"id"`
	ScheduleID int        `db:"schedule_id" json:"schedule_id"`
	Date       time.Time  `db:"date" json:"date"`
	Fajr       *time.Time `db:"fajr" json:"fajr"`
	Sunrise    *time.Time `db:"sunrise" json:"sunrise"`
	Dhuhr      *time.Time `db:"dhuhr" json:"dhuhr"`
	Asr        *time.Time `db:"asr" json:"asr"`
	Sunset     *time.Time `db:"sunset" json:"sunset"`
	Maghrib    *time.Time `db:"maghrib" json:"maghrib"`
	Isha       *time.Time `db:"isha" json:"isha"`
	Imsak      *time.Time `db:"imsak" json:"imsak"`
	Midnight   *time.Time `db:"midnight" json:"midnight"`
	FetchedAt  time.Time  `db:"fetched_at" json:"fetched_at"`
}

// TimeFor returns the clock-event for one of the five mutable prayers.
func (pt *PrayerTimes) TimeFor(p Prayer) *time.Time {
	switch p {
	case PrayerFajr:
		return pt.Fajr
	case PrayerDhuhr:
		return pt.Dhuhr
	case PrayerAsr:
		return pt.Asr
	case PrayerMaghrib:
		return pt.Maghrib
	case PrayerIsha:
		return pt.Isha
	}
	return nil
}

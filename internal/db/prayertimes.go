// internal/db/prayertimes.go
package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/muezzin/internal/model"
)

// UpsertPrayerTimes writes one day of fetched times for a schedule,
// replacing any earlier fetch for the same day. pt.Date must be a UTC day
// start.
func UpsertPrayerTimes(pt *model.PrayerTimes) (model.PrayerTimes, error) {
	var out model.PrayerTimes
	const q = `
	INSERT INTO prayer_times
	  (schedule_id, date, fajr, sunrise, dhuhr, asr, sunset, maghrib, isha, imsak, midnight, fetched_at)
	VALUES
	  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, now())
	ON CONFLICT (schedule_id, date) DO UPDATE SET
	  fajr = EXCLUDED.fajr,
	  sunrise = EXCLUDED.sunrise,
	  dhuhr = EXCLUDED.dhuhr,
	  asr = EXCLUDED.asr,
	  sunset = EXCLUDED.sunset,
	  maghrib = EXCLUDED.maghrib,
	  isha = EXCLUDED.isha,
	  imsak = EXCLUDED.imsak,
	  midnight = EXCLUDED.midnight,
	  fetched_at = now()
	RETURNING
	  id, schedule_id, date, fajr, sunrise, dhuhr, asr, sunset, maghrib, isha, imsak, midnight, fetched_at;`
	if err := DB.Get(&out, q,
		pt.ScheduleID, pt.Date,
		pt.Fajr, pt.Sunrise, pt.Dhuhr, pt.Asr, pt.Sunset,
		pt.Maghrib, pt.Isha, pt.Imsak, pt.Midnight,
	); err != nil {
		log.Error().Err(err).Int("schedule_id", pt.ScheduleID).
			Time("date", pt.Date).Msg("UpsertPrayerTimes failed")
		return model.PrayerTimes{}, err
	}
	return out, nil
}

// GetPrayerTimesForDay returns the cached row for (schedule, day), or
// (nil, nil) when no fetch has happened yet.
func GetPrayerTimesForDay(scheduleID int, day time.Time) (*model.PrayerTimes, error) {
	var pt model.PrayerTimes
	const q = `
	SELECT id, schedule_id, date, fajr, sunrise, dhuhr, asr, sunset, maghrib, isha, imsak, midnight, fetched_at
	  FROM prayer_times
	 WHERE schedule_id = $1 AND date = $2;`
	err := DB.Get(&pt, q, scheduleID, day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).
			Time("date", day).Msg("GetPrayerTimesForDay failed")
		return nil, err
	}
	return &pt, nil
}

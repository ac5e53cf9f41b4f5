package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/muezzin/internal/aladhan"
	"github.com/Nixie-Tech-LLC/muezzin/internal/model"
)

// dayStart returns the schedule-local midnight containing t, as a UTC
// instant. Cache rows are keyed by it.
func dayStart(t time.Time, s *model.Schedule) time.Time {
	local := t.In(s.Zone())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.Zone()).UTC()
}

// timesFromTimings converts a day of clock strings into an absolute-time
// cache row. Unparsable clock strings become nil events, never errors.
func timesFromTimings(s *model.Schedule, date time.Time, t *aladhan.Timings) *model.PrayerTimes {
	zone := s.Zone()
	day := dayStart(date, s)
	return &model.PrayerTimes{
		ScheduleID: s.ID,
		Date:       day,
		Fajr:       aladhan.ParseClock(t.Fajr, day, zone),
		Sunrise:    aladhan.ParseClock(t.Sunrise, day, zone),
		Dhuhr:      aladhan.ParseClock(t.Dhuhr, day, zone),
		Asr:        aladhan.ParseClock(t.Asr, day, zone),
		Sunset:     aladhan.ParseClock(t.Sunset, day, zone),
		Maghrib:    aladhan.ParseClock(t.Maghrib, day, zone),
		Isha:       aladhan.ParseClock(t.Isha, day, zone),
		Imsak:      aladhan.ParseClock(t.Imsak, day, zone),
		Midnight:   aladhan.ParseClock(t.Midnight, day, zone),
	}
}

// fetchAndStoreDay fetches one day's timings for a schedule and upserts the
// cache row.
func (s *Scheduler) fetchAndStoreDay(ctx context.Context, sched *model.Schedule, date time.Time) (*model.PrayerTimes, error) {
	timings, err := s.provider.FetchDay(ctx, sched, date)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", sched.ID).
			Time("date", date).Msg("failed to fetch prayer times")
		return nil, err
	}
	stored, err := s.store.UpsertPrayerTimes(timesFromTimings(sched, date, timings))
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// RefreshSchedule force-fetches today's and tomorrow's times for one
// schedule; exposed to operators through the API.
func (s *Scheduler) RefreshSchedule(ctx context.Context, scheduleID int) error {
	sched, err := s.store.GetSchedule(scheduleID)
	if err != nil {
		return err
	}
	now := time.Now()
	if _, err := s.fetchAndStoreDay(ctx, &sched, now); err != nil {
		return err
	}
	if _, err := s.fetchAndStoreDay(ctx, &sched, now.AddDate(0, 0, 1)); err != nil {
		return err
	}
	return nil
}

// PrefetchMonth populates the cache for a whole month from the bulk
// calendar endpoint, returning how many days were written.
func (s *Scheduler) PrefetchMonth(ctx context.Context, scheduleID int, year int, month time.Month) (int, error) {
	sched, err := s.store.GetSchedule(scheduleID)
	if err != nil {
		return 0, err
	}
	days, err := s.provider.FetchMonth(ctx, &sched, year, month)
	if err != nil {
		return 0, err
	}
	written := 0
	for dateStr, timings := range days {
		date, err := time.ParseInLocation("02-01-2006", dateStr, sched.Zone())
		if err != nil {
			log.Warn().Str("date", dateStr).Int("schedule_id", sched.ID).
				Msg("skipping calendar day with unparsable date")
			continue
		}
		t := timings
		if _, err := s.store.UpsertPrayerTimes(timesFromTimings(&sched, date, &t)); err != nil {
			continue
		}
		written++
	}
	log.Info().Int("schedule_id", sched.ID).Int("days", written).
		Msgf("prefetched calendar for %04d-%02d", year, month)
	return written, nil
}

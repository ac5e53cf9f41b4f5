package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/muezzin/internal/db"
	"github.com/Nixie-Tech-LLC/muezzin/internal/events"
	"github.com/Nixie-Tech-LLC/muezzin/internal/model"
	"github.com/Nixie-Tech-LLC/muezzin/internal/prayer"
)

// ZoneController is the slice of the zone volume service the evaluator
// drives. *soundtrack.Client satisfies it.
type ZoneController interface {
	GetVolume(ctx context.Context, zoneID string) (int, error)
	SetVolume(ctx context.Context, zoneID string, volume int) error
	Mute(ctx context.Context, zoneID string) (int, error)
	Unmute(ctx context.Context, zoneID string, restoreVolume int) error
}

// Evaluator runs the per-(zone, prayer) mute state machine. It is
// level-triggered: every pass recomputes "inside the mute window" from the
// clock and the registry, so a missed tick or restart self-corrects on the
// next pass.
type Evaluator struct {
	store    db.Store
	zones    ZoneController
	registry *Registry

	// test seams
	now       func() time.Time
	afterFunc func(d time.Duration, f func())
}

func NewEvaluator(store db.Store, zones ZoneController, registry *Registry) *Evaluator {
	return &Evaluator{
		store:    store,
		zones:    zones,
		registry: registry,
		now:      time.Now,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// EvaluateSchedule runs one pass over every mutable prayer of a schedule
// against its cached times for the day.
func (e *Evaluator) EvaluateSchedule(ctx context.Context, s *model.Schedule, pt *model.PrayerTimes) {
	now := e.now()
	for _, p := range model.MutablePrayers {
		t := pt.TimeFor(p)
		if t == nil {
			continue
		}
		e.evaluatePrayer(ctx, s, p, *t, now)
	}
}

func (e *Evaluator) evaluatePrayer(ctx context.Context, s *model.Schedule, p model.Prayer, prayerTime, now time.Time) {
	windowStart := prayerTime.Add(-time.Duration(s.PreMuteMinutes) * time.Minute)
	windowEnd := prayerTime.Add(time.Duration(s.MuteDurationMinutes) * time.Minute)

	// inclusive on both ends
	inWindow := !now.Before(windowStart) && !now.After(windowEnd)
	isMuted := e.registry.Has(s.SoundZoneID, p)

	if inWindow && !isMuted {
		if e.applicable(s, p, now) {
			e.mute(ctx, s, p)
		}
	} else if !inWindow && isMuted {
		e.Unmute(ctx, s, p)
	}
}

// applicable checks the prayer is enabled for the schedule and, for
// ramadan-only schedules, that the date falls in ramadan.
func (e *Evaluator) applicable(s *model.Schedule, p model.Prayer, now time.Time) bool {
	if !s.PrayerEnabled(p) {
		return false
	}
	if s.RamadanOnly && !prayer.IsRamadan(now) {
		return false
	}
	return true
}

// mute transitions (zone, prayer) from idle to muted: capture the current
// volume, drop the zone to the schedule's mute volume, record the attempt,
// and arm a deferred unmute so restore latency does not depend on tick
// cadence. A failure leaves the key idle; the next tick retries.
func (e *Evaluator) mute(ctx context.Context, s *model.Schedule, p model.Prayer) {
	if e.registry.Has(s.SoundZoneID, p) {
		log.Warn().Str("zone_id", s.SoundZoneID).Str("prayer", string(p)).
			Msg("zone already muted for prayer")
		return
	}

	now := e.now()
	var volumeBefore int
	var err error

	if s.MuteVolume == 0 {
		volumeBefore, err = e.zones.Mute(ctx, s.SoundZoneID)
	} else {
		volumeBefore, err = e.zones.GetVolume(ctx, s.SoundZoneID)
		if err == nil && volumeBefore != s.MuteVolume {
			err = e.zones.SetVolume(ctx, s.SoundZoneID, s.MuteVolume)
		}
	}
	if err != nil {
		log.Error().Err(err).Str("zone_id", s.SoundZoneID).Str("prayer", string(p)).
			Msg("failed to mute zone")
		msg := err.Error()
		if _, herr := e.store.InsertMuteHistory(&model.MuteHistory{
			ScheduleID:   s.ID,
			Prayer:       p,
			MutedAt:      now,
			Success:      false,
			ErrorMessage: &msg,
		}); herr != nil {
			log.Error().Err(herr).Msg("failed to record mute failure")
		}
		return
	}

	inserted := e.registry.PutIfAbsent(ActiveMute{
		ScheduleID:   s.ID,
		ZoneID:       s.SoundZoneID,
		Prayer:       p,
		VolumeBefore: volumeBefore,
		MutedAt:      now,
	})
	if !inserted {
		// another path muted this key between the guard and here
		log.Warn().Str("zone_id", s.SoundZoneID).Str("prayer", string(p)).
			Msg("mute raced an existing entry")
		return
	}

	if _, err := e.store.InsertMuteHistory(&model.MuteHistory{
		ScheduleID:   s.ID,
		Prayer:       p,
		MutedAt:      now,
		VolumeBefore: volumeBefore,
		VolumeAfter:  s.MuteVolume,
		Success:      true,
	}); err != nil {
		log.Error().Err(err).Msg("failed to record mute")
	}

	log.Info().Str("zone_id", s.SoundZoneID).Str("prayer", string(p)).
		Int("volume_before", volumeBefore).Int("mute_volume", s.MuteVolume).
		Msg("muted zone for prayer")

	events.PublishMuteEvent(events.MuteEvent{
		ZoneID:     s.SoundZoneID,
		ScheduleID: s.ID,
		Prayer:     string(p),
		Action:     "mute",
		Volume:     s.MuteVolume,
		At:         now,
	})

	// deferred restore, independent of the next tick; Unmute no-ops if the
	// tick already got there
	sched := *s
	e.afterFunc(time.Duration(s.MuteDurationMinutes)*time.Minute, func() {
		e.Unmute(context.Background(), &sched, p)
	})
}

// Unmute transitions (zone, prayer) from muted to idle, restoring the
// schedule's baseline volume when configured, else the captured one. On
// failure the registry entry stays so the next tick retries rather than
// abandoning a zone known to be muted.
func (e *Evaluator) Unmute(ctx context.Context, s *model.Schedule, p model.Prayer) {
	am, ok := e.registry.Get(s.SoundZoneID, p)
	if !ok {
		// already idle; the tick and the deferred timer both call in here
		log.Debug().Str("zone_id", s.SoundZoneID).Str("prayer", string(p)).
			Msg("no active mute found")
		return
	}

	restoreVolume := am.VolumeBefore
	if s.BaselineVolume != nil && *s.BaselineVolume > 0 {
		restoreVolume = *s.BaselineVolume
	}

	if err := e.zones.Unmute(ctx, s.SoundZoneID, restoreVolume); err != nil {
		log.Error().Err(err).Str("zone_id", s.SoundZoneID).Str("prayer", string(p)).
			Msg("failed to unmute zone, will retry next tick")
		return
	}

	now := e.now()
	if err := e.store.MarkUnmuted(s.ID, p, now); err != nil {
		log.Error().Err(err).Msg("failed to stamp unmute")
	}

	e.registry.Delete(s.SoundZoneID, p)

	log.Info().Str("zone_id", s.SoundZoneID).Str("prayer", string(p)).
		Int("restored_volume", restoreVolume).Msg("unmuted zone after prayer")

	events.PublishMuteEvent(events.MuteEvent{
		ZoneID:     s.SoundZoneID,
		ScheduleID: s.ID,
		Prayer:     string(p),
		Action:     "unmute",
		Volume:     restoreVolume,
		At:         now,
	})
}

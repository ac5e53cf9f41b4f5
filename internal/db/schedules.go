// internal/db/schedules.go
package db

import (
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/muezzin/internal/model"
)

const scheduleColumns = `
	id, account_id, sound_zone_id, zone_name, location, latitude, longitude,
	time_zone, calculation_method, juristic_method, high_latitude_rule,
	adjustments, baseline_volume, mute_volume, pre_mute_minutes,
	mute_duration_minutes, ramadan_only, enabled_prayers, is_active,
	created_at, updated_at`

// ListActiveSchedules returns every schedule the evaluator should drive.
// Schedules are created and edited by the admin app; this service only
// reads them.
func ListActiveSchedules() ([]model.Schedule, error) {
	var out []model.Schedule
	const q = `
	SELECT ` + scheduleColumns + `
	  FROM schedules
	 WHERE is_active = true
	 ORDER BY id;`
	if err := DB.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("ListActiveSchedules failed")
		return nil, err
	}
	return out, nil
}

func ListSchedules() ([]model.Schedule, error) {
	var out []model.Schedule
	const q = `
	SELECT ` + scheduleColumns + `
	  FROM schedules
	 ORDER BY id;`
	if err := DB.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("ListSchedules failed")
		return nil, err
	}
	return out, nil
}

func GetSchedule(scheduleID int) (model.Schedule, error) {
	var s model.Schedule
	const q = `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1;`
	if err := DB.Get(&s, q, scheduleID); err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("GetSchedule failed")
		return model.Schedule{}, err
	}
	return s, nil
}

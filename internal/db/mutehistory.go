// internal/db/mutehistory.go
package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/muezzin/internal/model"
)

// InsertMuteHistory appends one mute attempt, successful or not.
func InsertMuteHistory(rec *model.MuteHistory) (model.MuteHistory, error) {
	var out model.MuteHistory
	const q = `
	INSERT INTO mute_history
	  (schedule_id, prayer, muted_at, volume_before, volume_after, success, error_message)
	VALUES ($1,$2,$3,$4,$5,$6,$7)
	RETURNING id, schedule_id, prayer, muted_at, volume_before, volume_after, success, error_message, unmuted_at;`
	if err := DB.Get(&out, q,
		rec.ScheduleID, rec.Prayer, rec.MutedAt,
		rec.VolumeBefore, rec.VolumeAfter, rec.Success, rec.ErrorMessage,
	); err != nil {
		log.Error().Err(err).Int("schedule_id", rec.ScheduleID).
			Str("prayer", string(rec.Prayer)).Msg("InsertMuteHistory failed")
		return model.MuteHistory{}, err
	}
	return out, nil
}

// MarkUnmuted stamps unmuted_at on the open records for (schedule, prayer).
func MarkUnmuted(scheduleID int, prayer model.Prayer, unmutedAt time.Time) error {
	const q = `
	UPDATE mute_history
	   SET unmuted_at = $3
	 WHERE schedule_id = $1 AND prayer = $2 AND unmuted_at IS NULL;`
	if _, err := DB.Exec(q, scheduleID, prayer, unmutedAt); err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).
			Str("prayer", string(prayer)).Msg("MarkUnmuted failed")
		return err
	}
	return nil
}

// ListMuteHistory returns the most recent attempts for a schedule.
func ListMuteHistory(scheduleID int, limit int) ([]model.MuteHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []model.MuteHistory
	const q = `
	SELECT id, schedule_id, prayer, muted_at, volume_before, volume_after, success, error_message, unmuted_at
	  FROM mute_history
	 WHERE schedule_id = $1
	 ORDER BY muted_at DESC
	 LIMIT $2;`
	if err := DB.Select(&out, q, scheduleID, limit); err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("ListMuteHistory failed")
		return nil, err
	}
	return out, nil
}

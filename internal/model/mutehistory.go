package model

import "time"

// MuteHistory is an append-only audit row, one per mute attempt. Failed
// attempts are recorded too; UnmutedAt is stamped once on successful unmute.
type MuteHistory struct {
	ID           int        `db:"id" json:"id"`
	ScheduleID   int        `db:"schedule_id" json:"schedule_id"`
	Prayer       Prayer     `db:"prayer" json:"prayer"`
	MutedAt      time.Time  `db:"muted_at" json:"muted_at"`
	VolumeBefore int        `db:"volume_before" json:"volume_before"`
	VolumeAfter  int        `db:"volume_after" json:"volume_after"`
	Success      bool       `db:"success" json:"success"`
	ErrorMessage *string    `db:"error_message" json:"error_message"`
	UnmutedAt    *time.Time `db:"unmuted_at" json:"unmuted_at"`
}

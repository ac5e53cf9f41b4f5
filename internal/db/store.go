// exposes a Store interface that is passed to the scheduler and API
package db

import (
	"time"

	"github.com/Nixie-Tech-LLC/muezzin/internal/model"
)

type Store interface {
	// schedule functions (read-only; the admin app owns writes)
	ListActiveSchedules() ([]model.Schedule, error)
	ListSchedules() ([]model.Schedule, error)
	GetSchedule(scheduleID int) (model.Schedule, error)

	// prayer time cache functions
	UpsertPrayerTimes(pt *model.PrayerTimes) (model.PrayerTimes, error)
	GetPrayerTimesForDay(scheduleID int, day time.Time) (*model.PrayerTimes, error)

	// mute audit functions
	InsertMuteHistory(rec *model.MuteHistory) (model.MuteHistory, error)
	MarkUnmuted(scheduleID int, prayer model.Prayer, unmutedAt time.Time) error
	ListMuteHistory(scheduleID int, limit int) ([]model.MuteHistory, error)
}

type pgStore struct{}

// compile-time check that pgStore implements Store
// required so linter doesn't complain
var _ Store = (*pgStore)(nil)

func NewStore() Store {
	return &pgStore{}
}

func (*pgStore) ListActiveSchedules() ([]model.Schedule, error) { return ListActiveSchedules() }
func (*pgStore) ListSchedules() ([]model.Schedule, error)       { return ListSchedules() }
func (*pgStore) GetSchedule(id int) (model.Schedule, error)     { return GetSchedule(id) }

func (*pgStore) UpsertPrayerTimes(pt *model.PrayerTimes) (model.PrayerTimes, error) {
	return UpsertPrayerTimes(pt)
}

func (*pgStore) GetPrayerTimesForDay(scheduleID int, day time.Time) (*model.PrayerTimes, error) {
	return GetPrayerTimesForDay(scheduleID, day)
}

func (*pgStore) InsertMuteHistory(rec *model.MuteHistory) (model.MuteHistory, error) {
	return InsertMuteHistory(rec)
}

func (*pgStore) MarkUnmuted(scheduleID int, prayer model.Prayer, unmutedAt time.Time) error {
	return MarkUnmuted(scheduleID, prayer, unmutedAt)
}

func (*pgStore) ListMuteHistory(scheduleID int, limit int) ([]model.MuteHistory, error) {
	return ListMuteHistory(scheduleID, limit)
}

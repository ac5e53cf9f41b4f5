package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

type CalculationMethod string

const (
	MethodMWL     CalculationMethod = "MWL"
	MethodISNA    CalculationMethod = "ISNA"
	MethodEgypt   CalculationMethod = "EGYPT"
	MethodMakkah  CalculationMethod = "MAKKAH"
	MethodKarachi CalculationMethod = "KARACHI"
	MethodTehran  CalculationMethod = "TEHRAN"
	MethodJafari  CalculationMethod = "JAFARI"
)

type JuristicMethod string

const (
	JuristicShafi  JuristicMethod = "SHAFI"
	JuristicHanafi JuristicMethod = "HANAFI"
)

type HighLatitudeRule string

const (
	HighLatMiddleOfNight  HighLatitudeRule = "MIDDLE_OF_NIGHT"
	HighLatSeventhOfNight HighLatitudeRule = "SEVENTH_OF_NIGHT"
	HighLatAngleBased     HighLatitudeRule = "ANGLE_BASED"
)

type Prayer string

const (
	PrayerFajr    Prayer = "FAJR"
	PrayerDhuhr   Prayer = "DHUHR"
	PrayerAsr     Prayer = "ASR"
	PrayerMaghrib Prayer = "MAGHRIB"
	PrayerIsha    Prayer = "ISHA"
)

// MutablePrayers are the five prayers a schedule can mute for, in daily order.
var MutablePrayers = []Prayer{PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha}

// Tune carries per-prayer minute offsets forwarded to the calculation
// service, stored as jsonb.
type Tune map[string]int

func (t Tune) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *Tune) Scan(src interface{}) error {
	if src == nil {
		*t = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("tune: cannot scan %T", src)
	}
	return json.Unmarshal(b, t)
}

type Schedule struct {
	ID                  int               `db:"id" json:"id"`
	AccountID           string            `db:"account_id" json:"account_id"`
	SoundZoneID         string            `db:"sound_zone_id" json:"sound_zone_id"`
	ZoneName            string            `db:"zone_name" json:"zone_name"`
	Location            *string           `db:"location" json:"location"`
	Latitude            *float64          `db:"latitude" json:"latitude"`
	Longitude           *float64          `db:"longitude" json:"longitude"`
	TimeZone            string            `db:"time_zone" json:"time_zone"`
	CalculationMethod   CalculationMethod `db:"calculation_method" json:"calculation_method"`
	JuristicMethod      JuristicMethod    `db:"juristic_method" json:"juristic_method"`
	HighLatitudeRule    HighLatitudeRule  `db:"high_latitude_rule" json:"high_latitude_rule"`
	Adjustments         Tune              `db:"adjustments" json:"adjustments"`
	BaselineVolume      *int              `db:"baseline_volume" json:"baseline_volume"`
	MuteVolume          int               `db:"mute_volume" json:"mute_volume"`
	PreMuteMinutes      int               `db:"pre_mute_minutes" json:"pre_mute_minutes"`
	MuteDurationMinutes int               `db:"mute_duration_minutes" json:"mute_duration_minutes"`
	RamadanOnly         bool              `db:"ramadan_only" json:"ramadan_only"`
	EnabledPrayers      pq.StringArray    `db:"enabled_prayers" json:"enabled_prayers"`
	IsActive            bool              `db:"is_active" json:"is_active"`
	CreatedAt           time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time         `db:"updated_at" json:"updated_at"`
}

// PrayerEnabled reports whether the schedule mutes for the given prayer.
// Stored names are lowercase ("fajr", "dhuhr", ...).
func (s *Schedule) PrayerEnabled(p Prayer) bool {
	name := strings.ToLower(string(p))
	for _, ep := range s.EnabledPrayers {
		if ep == name {
			return true
		}
	}
	return false
}

// Zone returns the local time zone of the schedule, falling back to UTC
// when the stored name does not resolve.
func (s *Schedule) Zone() *time.Location {
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

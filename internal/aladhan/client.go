package aladhan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/muezzin/internal/model"
	"github.com/Nixie-Tech-LLC/muezzin/internal/redis"
)

const DefaultBaseURL = "https://api.aladhan.com/v1"

// ErrNoLocation means a schedule carries neither coordinates nor a
// free-text location, so no request can be built for it.
var ErrNoLocation = errors.New("schedule has neither coordinates nor location")

// ProviderError wraps any failure talking to the calculation service:
// transport errors, non-200 responses, or unparsable bodies.
type ProviderError struct {
	Op   string
	Code int
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("aladhan %s: status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("aladhan %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

var calculationMethodCodes = map[model.CalculationMethod]int{
	model.MethodMWL:     3,
	model.MethodISNA:    2,
	model.MethodEgypt:   5,
	model.MethodMakkah:  4,
	model.MethodKarachi: 1,
	model.MethodTehran:  7,
	model.MethodJafari:  0,
}

var juristicMethodCodes = map[model.JuristicMethod]int{
	model.JuristicShafi:  0,
	model.JuristicHanafi: 1,
}

var highLatitudeRuleCodes = map[model.HighLatitudeRule]int{
	model.HighLatMiddleOfNight:  1,
	model.HighLatSeventhOfNight: 2,
	model.HighLatAngleBased:     3,
}

// tune parameter is positional: nine comma separated minute offsets
var tuneOrder = []string{"imsak", "fajr", "sunrise", "dhuhr", "asr", "maghrib", "sunset", "isha", "midnight"}

// Timings is one day of clock strings ("HH:MM", 24h, local to the
// requested location) as returned by the calculation service.
type Timings struct {
	Fajr     string `json:"Fajr"`
	Sunrise  string `json:"Sunrise"`
	Dhuhr    string `json:"Dhuhr"`
	Asr      string `json:"Asr"`
	Sunset   string `json:"Sunset"`
	Maghrib  string `json:"Maghrib"`
	Isha     string `json:"Isha"`
	Imsak    string `json:"Imsak"`
	Midnight string `json:"Midnight"`
}

type dayResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Timings Timings `json:"timings"`
	} `json:"data"`
}

type calendarResponse struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

type calendarDay struct {
	Timings Timings `json:"timings"`
	Date    struct {
		Gregorian struct {
			Date string `json:"date"`
		} `json:"gregorian"`
	} `json:"date"`
}

const cacheTTL = 24 * time.Hour

// dayCache stores marshaled day responses keyed by date and query
// parameters.
type dayCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// redisCache is the production cache. It reports misses when no redis is
// configured, so the client degrades to fetching every day.
type redisCache struct{}

func (redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !redis.Enabled() {
		return nil, false
	}
	return redis.Get(ctx, key)
}

func (redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if redis.Enabled() {
		redis.Set(ctx, key, value, ttl)
	}
}

// Client talks to the prayer-time calculation service. Day responses are
// cached in redis so schedules sharing one venue don't refetch.
type Client struct {
	baseURL string
	http    *http.Client
	cache   dayCache
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		cache:   redisCache{},
	}
}

// scheduleParams maps a schedule's enumerated settings to the service's
// numeric query parameters.
func scheduleParams(s *model.Schedule) url.Values {
	params := url.Values{}
	params.Set("method", strconv.Itoa(calculationMethodCodes[s.CalculationMethod]))
	params.Set("school", strconv.Itoa(juristicMethodCodes[s.JuristicMethod]))
	params.Set("latitudeAdjustmentMethod", strconv.Itoa(highLatitudeRuleCodes[s.HighLatitudeRule]))

	if len(s.Adjustments) > 0 {
		offsets := make([]string, len(tuneOrder))
		for i, name := range tuneOrder {
			offsets[i] = strconv.Itoa(s.Adjustments[name])
		}
		params.Set("tune", strings.Join(offsets, ","))
	}
	return params
}

// locate fills the coordinate or address parameters and picks the endpoint
// variant. Coordinates win when both are present.
func locate(s *model.Schedule, params url.Values, byCoords, byAddress string) (string, error) {
	if s.Latitude != nil && s.Longitude != nil {
		params.Set("latitude", strconv.FormatFloat(*s.Latitude, 'f', -1, 64))
		params.Set("longitude", strconv.FormatFloat(*s.Longitude, 'f', -1, 64))
		return byCoords, nil
	}
	if s.Location != nil && *s.Location != "" {
		params.Set("address", *s.Location)
		return byAddress, nil
	}
	return "", ErrNoLocation
}

// FetchDay fetches one day's timings for a schedule. Does not retry; the
// caller decides whether to skip the cycle.
func (c *Client) FetchDay(ctx context.Context, s *model.Schedule, date time.Time) (*Timings, error) {
	dateStr := date.In(s.Zone()).Format("02-01-2006")

	params := scheduleParams(s)
	endpoint, err := locate(s,
		params,
		fmt.Sprintf("%s/timings/%s", c.baseURL, dateStr),
		fmt.Sprintf("%s/timingsByAddress/%s", c.baseURL, dateStr),
	)
	if err != nil {
		return nil, &ProviderError{Op: "timings", Err: err}
	}

	cacheKey := "aladhan:day:" + dateStr + ":" + params.Encode()
	if b, ok := c.cache.Get(ctx, cacheKey); ok {
		var t Timings
		if err := json.Unmarshal(b, &t); err == nil {
			return &t, nil
		}
	}

	var resp dayResponse
	if err := c.get(ctx, endpoint, params, &resp); err != nil {
		return nil, &ProviderError{Op: "timings", Err: err}
	}
	if resp.Code != http.StatusOK {
		log.Error().Int("code", resp.Code).Str("status", resp.Status).
			Int("schedule_id", s.ID).Msg("aladhan returned non-200 code")
		return nil, &ProviderError{Op: "timings", Code: resp.Code}
	}

	if b, err := json.Marshal(resp.Data.Timings); err == nil {
		c.cache.Set(ctx, cacheKey, b, cacheTTL)
	}
	return &resp.Data.Timings, nil
}

// FetchMonth fetches a whole month of timings, keyed by gregorian date
// ("dd-mm-yyyy"). A response without the expected array shape yields an
// empty map rather than an error.
func (c *Client) FetchMonth(ctx context.Context, s *model.Schedule, year int, month time.Month) (map[string]Timings, error) {
	params := scheduleParams(s)
	params.Set("year", strconv.Itoa(year))
	params.Set("month", strconv.Itoa(int(month)))

	endpoint, err := locate(s,
		params,
		c.baseURL+"/calendar",
		c.baseURL+"/calendarByAddress",
	)
	if err != nil {
		return nil, &ProviderError{Op: "calendar", Err: err}
	}

	var resp calendarResponse
	if err := c.get(ctx, endpoint, params, &resp); err != nil {
		return nil, &ProviderError{Op: "calendar", Err: err}
	}

	out := make(map[string]Timings)
	if resp.Code != http.StatusOK {
		return out, nil
	}
	var days []calendarDay
	if err := json.Unmarshal(resp.Data, &days); err != nil {
		// some error payloads carry data as an object
		return out, nil
	}
	for _, day := range days {
		out[day.Date.Gregorian.Date] = day.Timings
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, into interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(into); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// ParseClock resolves an "HH:MM" clock string against a calendar day in the
// given zone and returns the UTC instant. Empty or malformed strings yield
// nil.
func ParseClock(clock string, day time.Time, zone *time.Location) *time.Time {
	// some responses append a timezone suffix like "05:12 (EET)"
	if i := strings.IndexByte(clock, ' '); i >= 0 {
		clock = clock[:i]
	}
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return nil
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return nil
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return nil
	}
	local := day.In(zone)
	t := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, zone).UTC()
	return &t
}

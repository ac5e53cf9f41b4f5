package aladhan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/muezzin/internal/model"
)

func coordSchedule() model.Schedule {
	lat, lon := 41.8781, -87.6298
	return model.Schedule{
		ID:                1,
		Latitude:          &lat,
		Longitude:         &lon,
		TimeZone:          "UTC",
		CalculationMethod: model.MethodISNA,
		JuristicMethod:    model.JuristicShafi,
		HighLatitudeRule:  model.HighLatMiddleOfNight,
	}
}

func TestFetchDayByCoordinates(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{"code":200,"status":"OK","data":{"timings":{
			"Fajr":"05:12","Sunrise":"06:40","Dhuhr":"12:01","Asr":"15:30",
			"Sunset":"17:55","Maghrib":"17:55","Isha":"19:20","Imsak":"05:02","Midnight":"23:58"}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	sched := coordSchedule()
	date := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	timings, err := c.FetchDay(context.Background(), &sched, date)
	require.NoError(t, err)
	assert.Equal(t, "05:12", timings.Fajr)
	assert.Equal(t, "12:01", timings.Dhuhr)

	assert.Equal(t, "/timings/02-03-2026", gotPath)
	assert.Equal(t, []string{"2"}, gotQuery["method"])
	assert.Equal(t, []string{"0"}, gotQuery["school"])
	assert.Equal(t, []string{"1"}, gotQuery["latitudeAdjustmentMethod"])
	assert.Equal(t, []string{"41.8781"}, gotQuery["latitude"])
	assert.Equal(t, []string{"-87.6298"}, gotQuery["longitude"])
}

func TestFetchDayByAddress(t *testing.T) {
	var gotPath string
	var gotAddress string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAddress = r.URL.Query().Get("address")
		fmt.Fprint(w, `{"code":200,"status":"OK","data":{"timings":{"Fajr":"05:12"}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	location := "Chicago, IL"
	sched := model.Schedule{
		ID:       2,
		Location: &location,
		TimeZone: "UTC",
	}

	_, err := c.FetchDay(context.Background(), &sched, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "/timingsByAddress/02-03-2026", gotPath)
	assert.Equal(t, "Chicago, IL", gotAddress)
}

func TestFetchDayCoordinatesWinOverAddress(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"code":200,"status":"OK","data":{"timings":{}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	sched := coordSchedule()
	location := "Chicago, IL"
	sched.Location = &location

	_, err := c.FetchDay(context.Background(), &sched, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, gotPath, "/timings/")
}

func TestFetchDayTuneParam(t *testing.T) {
	var gotTune string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTune = r.URL.Query().Get("tune")
		fmt.Fprint(w, `{"code":200,"status":"OK","data":{"timings":{}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	sched := coordSchedule()
	sched.Adjustments = model.Tune{"fajr": 2, "isha": -3}

	_, err := c.FetchDay(context.Background(), &sched, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// positional: imsak,fajr,sunrise,dhuhr,asr,maghrib,sunset,isha,midnight
	assert.Equal(t, "0,2,0,0,0,0,0,-3,0", gotTune)
}

// memCache is an in-process dayCache for tests.
type memCache struct {
	entries map[string][]byte
	sets    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	b, ok := m.entries[key]
	return b, ok
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	m.sets++
	m.entries[key] = value
}

func TestFetchDayWritesAndReadsCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `{"code":200,"status":"OK","data":{"timings":{"Fajr":"05:12","Dhuhr":"12:01"}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	cache := newMemCache()
	c.cache = cache
	sched := coordSchedule()
	date := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	timings, err := c.FetchDay(context.Background(), &sched, date)
	require.NoError(t, err)
	assert.Equal(t, "05:12", timings.Fajr)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, cache.sets)

	timings, err = c.FetchDay(context.Background(), &sched, date)
	require.NoError(t, err)
	assert.Equal(t, "05:12", timings.Fajr)
	assert.Equal(t, 1, hits, "second fetch of the same day must be served from cache")

	// a different day misses and fetches again
	_, err = c.FetchDay(context.Background(), &sched, date.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestFetchDayCorruptCacheEntryRefetches(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `{"code":200,"status":"OK","data":{"timings":{"Fajr":"05:12"}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	cache := newMemCache()
	c.cache = cache
	sched := coordSchedule()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// warm the cache, then corrupt every entry
	_, err := c.FetchDay(context.Background(), &sched, date)
	require.NoError(t, err)
	for key := range cache.entries {
		cache.entries[key] = []byte("{not json")
	}

	timings, err := c.FetchDay(context.Background(), &sched, date)
	require.NoError(t, err)
	assert.Equal(t, "05:12", timings.Fajr)
	assert.Equal(t, 2, hits)
}

func TestFetchDayFailureNotCached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":400,"status":"Bad Request","data":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	cache := newMemCache()
	c.cache = cache
	sched := coordSchedule()

	_, err := c.FetchDay(context.Background(), &sched, time.Now())
	require.Error(t, err)
	assert.Zero(t, cache.sets)
}

func TestFetchDayNon200Code(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":400,"status":"Bad Request","data":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	sched := coordSchedule()

	_, err := c.FetchDay(context.Background(), &sched, time.Now())
	require.Error(t, err)
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 400, perr.Code)
}

func TestFetchDayNoLocation(t *testing.T) {
	c := NewClient("http://unused")
	sched := model.Schedule{ID: 3, TimeZone: "UTC"}

	_, err := c.FetchDay(context.Background(), &sched, time.Now())
	assert.ErrorIs(t, err, ErrNoLocation)
}

func TestFetchDayUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	sched := coordSchedule()

	_, err := c.FetchDay(context.Background(), &sched, time.Now())
	var perr *ProviderError
	assert.ErrorAs(t, err, &perr)
}

func TestFetchMonth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar", r.URL.Path)
		assert.Equal(t, "2026", r.URL.Query().Get("year"))
		assert.Equal(t, "3", r.URL.Query().Get("month"))
		fmt.Fprint(w, `{"code":200,"data":[
			{"timings":{"Fajr":"05:12"},"date":{"gregorian":{"date":"01-03-2026"}}},
			{"timings":{"Fajr":"05:10"},"date":{"gregorian":{"date":"02-03-2026"}}}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	sched := coordSchedule()

	days, err := c.FetchMonth(context.Background(), &sched, 2026, time.March)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "05:10", days["02-03-2026"].Fajr)
}

func TestFetchMonthToleratesNonArrayData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":200,"data":{"unexpected":"shape"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	sched := coordSchedule()

	days, err := c.FetchMonth(context.Background(), &sched, 2026, time.March)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestParseClock(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	got := ParseClock("05:12", day, time.UTC)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 3, 2, 5, 12, 0, 0, time.UTC), *got)

	// timezone suffix from some responses is ignored
	got = ParseClock("17:30 (EET)", day, time.UTC)
	require.NotNil(t, got)
	assert.Equal(t, 17, got.Hour())

	assert.Nil(t, ParseClock("", day, time.UTC))
	assert.Nil(t, ParseClock("noon", day, time.UTC))
	assert.Nil(t, ParseClock("aa:bb", day, time.UTC))

	// out-of-range values must read as absent, not roll into the next day
	assert.Nil(t, ParseClock("27:80", day, time.UTC))
	assert.Nil(t, ParseClock("24:00", day, time.UTC))
	assert.Nil(t, ParseClock("12:60", day, time.UTC))
	assert.Nil(t, ParseClock("-1:30", day, time.UTC))
}

func TestParseClockConvertsZone(t *testing.T) {
	zone, err := time.LoadLocation("Asia/Riyadh") // UTC+3, no DST
	require.NoError(t, err)
	day := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC) // 2026-03-02 00:00 in Riyadh

	got := ParseClock("12:00", day, zone)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), *got)
}

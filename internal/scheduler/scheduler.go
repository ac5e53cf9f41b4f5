package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/muezzin/internal/aladhan"
	"github.com/Nixie-Tech-LLC/muezzin/internal/db"
)

const (
	evalInterval = time.Minute

	// daily prefetch fires at 02:00 process-local
	prefetchHour   = 2
	prefetchMinute = 0
)

// JobStatus is a snapshot of one periodic task for the status API.
type JobStatus struct {
	Name    string     `json:"name"`
	LastRun *time.Time `json:"last_run"`
	NextRun time.Time  `json:"next_run"`
	Runs    int        `json:"runs"`
}

type jobState struct {
	mu      sync.Mutex
	name    string
	lastRun time.Time
	nextRun time.Time
	runs    int
}

func (j *jobState) ran(next time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lastRun = time.Now()
	j.nextRun = next
	j.runs++
}

func (j *jobState) status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	st := JobStatus{Name: j.name, NextRun: j.nextRun, Runs: j.runs}
	if !j.lastRun.IsZero() {
		lr := j.lastRun
		st.LastRun = &lr
	}
	return st
}

// Scheduler owns the two periodic tasks: the minute evaluation tick and the
// daily prefetch. Each task waits for its own previous run to finish; the
// two are independent of each other.
type Scheduler struct {
	store     db.Store
	provider  *aladhan.Client
	registry  *Registry
	evaluator *Evaluator

	evalJob     jobState
	prefetchJob jobState

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(store db.Store, provider *aladhan.Client, zones ZoneController) *Scheduler {
	registry := NewRegistry()
	s := &Scheduler{
		store:     store,
		provider:  provider,
		registry:  registry,
		evaluator: NewEvaluator(store, zones, registry),
	}
	s.evalJob.name = "evaluate"
	s.prefetchJob.name = "daily-prefetch"
	return s
}

// Registry exposes the active-mute store for the status API.
func (s *Scheduler) Registry() *Registry { return s.registry }

// Status snapshots both periodic tasks.
func (s *Scheduler) Status() []JobStatus {
	return []JobStatus{s.evalJob.status(), s.prefetchJob.status()}
}

// Start launches both tasks and the cold-start prefetch. Stop (or
// cancelling the parent context) shuts them down.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.evalLoop(ctx)
	go s.prefetchLoop(ctx)

	log.Info().Msg("prayer times scheduler started")
}

// Stop cancels both tasks and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	log.Info().Msg("prayer times scheduler stopped")
}

func (s *Scheduler) evalLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(evalInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runTick(ctx, &s.evalJob, time.Now().Add(evalInterval), s.checkPrayerTimes)
		}
	}
}

func (s *Scheduler) prefetchLoop(ctx context.Context) {
	defer s.wg.Done()

	// cold-start bootstrap so the first ticks hit a warm cache
	s.runTick(ctx, &s.prefetchJob, nextDaily(time.Now()), s.dailyPrefetch)

	for {
		wait := time.Until(nextDaily(time.Now()))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.runTick(ctx, &s.prefetchJob, nextDaily(time.Now()), s.dailyPrefetch)
		}
	}
}

// nextDaily returns the next 02:00 process-local after now.
func nextDaily(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), prefetchHour, prefetchMinute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// runTick executes one task run, containing any panic so a bad cycle never
// takes the loop down.
func (s *Scheduler) runTick(ctx context.Context, job *jobState, next time.Time, fn func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("job", job.name).Msg("task run panicked")
		}
	}()
	fn(ctx)
	job.ran(next)
}

// checkPrayerTimes is the evaluation tick: walk every active schedule,
// load (or lazily fetch) today's times, and run the state machine. One
// schedule failing never blocks the rest.
func (s *Scheduler) checkPrayerTimes(ctx context.Context) {
	schedules, err := s.store.ListActiveSchedules()
	if err != nil {
		log.Error().Err(err).Msg("failed to load schedules")
		return
	}

	now := time.Now()
	for i := range schedules {
		sched := &schedules[i]

		pt, err := s.store.GetPrayerTimesForDay(sched.ID, dayStart(now, sched))
		if err != nil {
			continue
		}
		if pt == nil {
			pt, err = s.fetchAndStoreDay(ctx, sched, now)
			if err != nil {
				// provider failure: skip this cycle, retry next tick
				continue
			}
		}

		s.evaluator.EvaluateSchedule(ctx, sched, pt)
	}
}

// dailyPrefetch warms today's and tomorrow's cache rows for every active
// schedule.
func (s *Scheduler) dailyPrefetch(ctx context.Context) {
	schedules, err := s.store.ListActiveSchedules()
	if err != nil {
		log.Error().Err(err).Msg("failed to load schedules for prefetch")
		return
	}

	today := time.Now()
	tomorrow := today.AddDate(0, 0, 1)

	for i := range schedules {
		sched := &schedules[i]
		if _, err := s.fetchAndStoreDay(ctx, sched, today); err != nil {
			continue
		}
		if _, err := s.fetchAndStoreDay(ctx, sched, tomorrow); err != nil {
			continue
		}
	}

	log.Info().Int("schedules", len(schedules)).Msg("daily prayer times fetch completed")
}

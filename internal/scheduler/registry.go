package scheduler

import (
	"sync"
	"time"

	"github.com/Nixie-Tech-LLC/muezzin/internal/model"
)

// ActiveMute tracks one in-flight mute for a (zone, prayer) key: which
// schedule drove it and what volume to restore.
type ActiveMute struct {
	ScheduleID   int          `json:"schedule_id"`
	ZoneID       string       `json:"zone_id"`
	Prayer       model.Prayer `json:"prayer"`
	VolumeBefore int          `json:"volume_before"`
	MutedAt      time.Time    `json:"muted_at"`
}

// Registry is the lock-guarded keyed store of active mutes. The evaluation
// tick and the deferred unmute timers race on it, so every access goes
// through the mutex. At most one entry exists per (zone, prayer) key.
type Registry struct {
	mu    sync.Mutex
	mutes map[string]ActiveMute
}

func NewRegistry() *Registry {
	return &Registry{mutes: make(map[string]ActiveMute)}
}

func muteKey(zoneID string, p model.Prayer) string {
	return zoneID + "-" + string(p)
}

func (r *Registry) Get(zoneID string, p model.Prayer) (ActiveMute, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	am, ok := r.mutes[muteKey(zoneID, p)]
	return am, ok
}

func (r *Registry) Has(zoneID string, p model.Prayer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.mutes[muteKey(zoneID, p)]
	return ok
}

// PutIfAbsent records a mute unless the key is already held; reports
// whether the entry was inserted.
func (r *Registry) PutIfAbsent(am ActiveMute) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := muteKey(am.ZoneID, am.Prayer)
	if _, ok := r.mutes[key]; ok {
		return false
	}
	r.mutes[key] = am
	return true
}

func (r *Registry) Delete(zoneID string, p model.Prayer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mutes, muteKey(zoneID, p))
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mutes)
}

// Snapshot copies the current entries for the status API.
func (r *Registry) Snapshot() []ActiveMute {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ActiveMute, 0, len(r.mutes))
	for _, am := range r.mutes {
		out = append(out, am)
	}
	return out
}

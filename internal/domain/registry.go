package domain

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// StationRecord is the freshest transmission known for one station.
type StationRecord struct {
	Key          string    `json:"station_id"`
	LastSeen     time.Time `json:"last_seen"`
	Transmission string    `json:"transmission"` // LastSeen in CanonicalDateLayout
}

// StationView is a record paired with the status computed at read time.
type StationView struct {
	StationRecord
	Status Status `json:"status"`
}

// Snapshot is a filtered, classified view of the registry at one instant.
type Snapshot struct {
	EvaluatedAt time.Time     `json:"evaluated_at"`
	Stations    []StationView `json:"stations"`
	Total       int           `json:"total"`
	Online      int           `json:"online"`
	Delayed     int           `json:"delayed"`
	Offline     int           `json:"offline"`
}

// IngestOutcome says what a single file did to the registry.
type IngestOutcome string

const (
	OutcomeCreated      IngestOutcome = "created"
	OutcomeUpdated      IngestOutcome = "updated"
	OutcomeStale        IngestOutcome = "stale"
	OutcomeRejectedName IngestOutcome = "rejected_name"
	OutcomeNoDate       IngestOutcome = "no_date"
	OutcomeUndecodable  IngestOutcome = "undecodable"
)

// Applied reports whether the outcome changed the registry.
func (o IngestOutcome) Applied() bool {
	return o == OutcomeCreated || o == OutcomeUpdated
}

// IngestResult describes one Ingest call.
type IngestResult struct {
	Outcome IngestOutcome
	Key     string
	Date    time.Time
	Err     error
}

// DateFinder extracts the latest date from decoded text. *Extractor
// implements it; the pipeline wraps it with a cache.
type DateFinder interface {
	Latest(text string) (time.Time, bool)
}

// Registry keeps one StationRecord per station key, newest date wins.
// It is safe for concurrent use.
type Registry struct {
	normalizer *Normalizer
	dates      DateFinder
	thresholds Thresholds

	mu      sync.RWMutex
	records map[string]StationRecord
}

// NewRegistry wires a registry from its collaborators.
func NewRegistry(n *Normalizer, dates DateFinder, th Thresholds) *Registry {
	return &Registry{
		normalizer: n,
		dates:      dates,
		thresholds: th,
		records:    make(map[string]StationRecord),
	}
}

// Ingest attributes one file to its station and merges its latest date.
// Files whose names reduce to noise, that carry no date, or that cannot be
// decoded leave the registry untouched.
func (r *Registry) Ingest(fileName string, content []byte) IngestResult {
	key, ok := r.normalizer.Normalize(fileName)
	if !ok {
		return IngestResult{Outcome: OutcomeRejectedName}
	}

	text, err := DecodeText(content)
	if err != nil {
		return IngestResult{Outcome: OutcomeUndecodable, Key: key, Err: err}
	}

	latest, ok := r.dates.Latest(text)
	if !ok {
		return IngestResult{Outcome: OutcomeNoDate, Key: key}
	}

	return IngestResult{Outcome: r.merge(key, latest), Key: key, Date: latest}
}

func (r *Registry) merge(key string, latest time.Time) IngestOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[key]
	if ok && !latest.After(existing.LastSeen) {
		return OutcomeStale
	}
	r.records[key] = StationRecord{
		Key:          key,
		LastSeen:     latest,
		Transmission: FormatDate(latest),
	}
	if ok {
		return OutcomeUpdated
	}
	return OutcomeCreated
}

// Reset drops every record.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string]StationRecord)
}

// Len returns the number of tracked stations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *Registry) record(key string) (StationRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[key]
	return rec, ok
}

// Query returns the records whose key contains filter (case-insensitive),
// ordered by key ascending. An empty filter matches everything.
func (r *Registry) Query(filter string) []StationRecord {
	needle := strings.ToLower(filter)

	r.mu.RLock()
	out := make([]StationRecord, 0, len(r.records))
	for key, rec := range r.records {
		if strings.Contains(strings.ToLower(key), needle) {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Snapshot classifies the filtered records against now.
func (r *Registry) Snapshot(now time.Time, filter string) Snapshot {
	records := r.Query(filter)
	snap := Snapshot{
		EvaluatedAt: now,
		Stations:    make([]StationView, 0, len(records)),
	}
	for _, rec := range records {
		status := r.thresholds.Classify(now, rec.LastSeen)
		snap.Stations = append(snap.Stations, StationView{StationRecord: rec, Status: status})
		snap.Total++
		switch status {
		case StatusOnline:
			snap.Online++
		case StatusDelayed:
			snap.Delayed++
		case StatusOffline:
			snap.Offline++
		}
	}
	return snap
}

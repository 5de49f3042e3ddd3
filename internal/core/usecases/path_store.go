package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/upt-maps/campusmap/internal/core/domain"
	"github.com/upt-maps/campusmap/internal/core/ports"
	"github.com/upt-maps/campusmap/internal/pkg/metrics"
)

// StorageKey is the single key the whole path collection is persisted under.
// It must stay stable across releases or saved paths disappear.
const StorageKey = "campusmap:paths:v1"

// PathStore holds all saved path records, in insertion order, and mirrors
// every mutation into the KV storage collaborator. In-memory state is
// authoritative: a failed write is logged and tolerated, the session keeps
// working.
type PathStore struct {
	mu          sync.Mutex
	storage     ports.KVStorage
	records     []domain.PathRecord
	subscribers []func()
	lastID      int64
}

// NewPathStore creates a store and loads the persisted collection.
// A missing key, unparseable payload, or non-array value all mean "no data";
// none of them is an error. storage may be nil for a purely in-memory store.
func NewPathStore(ctx context.Context, storage ports.KVStorage) *PathStore {
	s := &PathStore{storage: storage}
	s.load(ctx)
	return s
}

func (s *PathStore) load(ctx context.Context) {
	if s.storage == nil {
		return
	}
	data, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		if err != ports.ErrNoData {
			slog.Warn("path storage unreadable, starting empty", "key", StorageKey, "error", err)
		}
		return
	}
	var records []domain.PathRecord
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("path storage corrupt, starting empty", "key", StorageKey, "error", err)
		return
	}
	s.records = records
}

// Subscribe registers a callback invoked after every successful mutation.
func (s *PathStore) Subscribe(fn func()) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// Add inserts a record. The record must carry at least one in-bounds point;
// an id is assigned when absent. The full collection is re-persisted and
// subscribers are notified.
func (s *PathStore) Add(ctx context.Context, rec domain.PathRecord) (domain.PathRecord, error) {
	if err := rec.Validate(); err != nil {
		return domain.PathRecord{}, err
	}
	if rec.Type == "" {
		rec.Type = domain.DefaultPathType
	}
	rec.Points = rec.Points.Clone()

	s.mu.Lock()
	if rec.ID == "" {
		rec.ID = s.nextID()
	} else {
		for _, existing := range s.records {
			if existing.ID == rec.ID {
				s.mu.Unlock()
				return domain.PathRecord{}, fmt.Errorf("duplicate path id %q", rec.ID)
			}
		}
	}
	s.records = append(s.records, rec)
	s.persist(ctx)
	s.mu.Unlock()

	s.notify()
	return rec, nil
}

// Remove deletes the record with the given id. Removing an absent id is a
// no-op: deletion is idempotent.
func (s *PathStore) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	removed := false
	for i, rec := range s.records {
		if rec.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		s.persist(ctx)
	}
	s.mu.Unlock()

	if removed {
		s.notify()
	}
}

// ClearAll drops every record and deletes the storage key.
func (s *PathStore) ClearAll(ctx context.Context) {
	s.mu.Lock()
	s.records = nil
	if s.storage != nil {
		if err := s.storage.Delete(ctx, StorageKey); err != nil {
			slog.Warn("path storage delete failed", "key", StorageKey, "error", err)
		}
	}
	s.mu.Unlock()

	s.notify()
}

// List returns the records in insertion order. The slice and its point
// lists are copies; callers cannot mutate the store through them.
func (s *PathStore) List() []domain.PathRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.PathRecord, len(s.records))
	for i, rec := range s.records {
		rec.Points = rec.Points.Clone()
		out[i] = rec
	}
	return out
}

// Get returns the record with the given id.
func (s *PathStore) Get(id string) (domain.PathRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ID == id {
			rec.Points = rec.Points.Clone()
			return rec, nil
		}
	}
	return domain.PathRecord{}, domain.ErrPathNotFound
}

// Len reports the number of stored records.
func (s *PathStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// ExportAll serializes every record as a JSON array of export shapes.
func (s *PathStore) ExportAll() ([]byte, error) {
	records := s.List()
	if records == nil {
		records = []domain.PathRecord{}
	}
	return json.Marshal(records)
}

// persist writes the full collection under StorageKey. Caller holds s.mu.
func (s *PathStore) persist(ctx context.Context) {
	if s.storage == nil {
		return
	}
	data, err := json.Marshal(s.records)
	if err != nil {
		slog.Error("path collection marshal failed", "error", err)
		return
	}
	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		metrics.StorageWriteFailures.Inc()
		slog.Warn("path storage write failed, in-memory state kept", "key", StorageKey, "error", err)
	}
}

func (s *PathStore) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// nextID derives an id from the wall clock, nudged forward on collision so
// ids stay unique within the process. Caller holds s.mu.
func (s *PathStore) nextID() string {
	ns := time.Now().UnixNano()
	if ns <= s.lastID {
		ns = s.lastID + 1
	}
	s.lastID = ns
	return "path-" + strconv.FormatInt(ns, 10)
}

package store

import "time"

// Key identifies a delivered entry. Keying by (source URL, entry ID)
// avoids cross-feed ID collisions.
type Key struct {
	SourceURL string
	EntryID   string
}

// Addition is one successful delivery recorded during the current run.
type Addition struct {
	Key         Key
	Link        string
	DeliveredAt time.Time
}

// Record is the in-memory view of the persisted sent-entries set.
// Lifecycle: loaded once at process start, mutated as deliveries succeed,
// committed once before exit.
type Record struct {
	seen  map[Key]struct{}
	added []Addition
}

func NewRecord() *Record {
	return &Record{seen: make(map[Key]struct{})}
}

// NewRecordFromKeys builds a record whose keys count as already
// persisted: they are never part of Added.
func NewRecordFromKeys(keys []Key) *Record {
	record := NewRecord()
	for _, key := range keys {
		record.seen[key] = struct{}{}
	}
	return record
}

func (r *Record) Has(key Key) bool {
	_, ok := r.seen[key]
	return ok
}

// Add marks key as delivered. Re-adding a present key is a no-op, so an
// unexpected overlapping run can only produce duplicate posts, never a
// corrupted record.
func (r *Record) Add(key Key, link string, deliveredAt time.Time) {
	if r.Has(key) {
		return
	}
	r.seen[key] = struct{}{}
	r.added = append(r.added, Addition{Key: key, Link: link, DeliveredAt: deliveredAt})
}

// Added returns the deliveries recorded since the record was loaded, in
// delivery order. These are the only rows a commit writes.
func (r *Record) Added() []Addition {
	return r.added
}

func (r *Record) Len() int {
	return len(r.seen)
}

// Keys returns every key in the record, persisted and newly added alike.
// Order is unspecified.
func (r *Record) Keys() []Key {
	keys := make([]Key, 0, len(r.seen))
	for key := range r.seen {
		keys = append(keys, key)
	}
	return keys
}

// Package store is the in-memory object store a worker keeps between
// messages. Objects are arbitrary decoded values keyed by ObjectID and may
// carry tags and a description, which the search operation matches against.
//
// The store is safe for concurrent use: a sharded map guarded by RW mutexes
// holds the records, a global tag index backs tag lookups, and metrics are
// plain atomics so reading them never blocks writers. Stored values are not
// copied; callers hand over ownership on Set and must not mutate what Get
// returns.
package store

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shaanrockz/PySyft/pkg/types"
)

var (
	// ErrNotFound reports that no object is stored under the id.
	ErrNotFound = errors.New("object not found")
	// ErrNoShape reports that the stored object has no shape to answer with.
	ErrNoShape = errors.New("object has no shape")
)

type Options struct {
	Shards     int    // shard count, rounded up to at least 1 (default 64)
	MaxObjects uint64 // hard cap on stored objects (0 = unlimited)
}

func (o *Options) withDefaults() Options {
	res := *o
	if res.Shards <= 0 {
		res.Shards = 64
	}
	return res
}

type Store struct {
	opts   Options
	shards []shard

	// Tag index for WithTag. Locked after a shard mutex, never before.
	tagMu sync.RWMutex
	byTag map[string]map[types.ObjectID]struct{}

	mObjects  atomic.Uint64
	mSets     atomic.Uint64
	mGets     atomic.Uint64
	mHits     atomic.Uint64
	mMisses   atomic.Uint64
	mDels     atomic.Uint64
	mSearches atomic.Uint64
}

type shard struct {
	mu sync.RWMutex
	m  map[types.ObjectID]*record
}

type record struct {
	value       any
	tags        []string
	description string
}

func New(opts Options) *Store {
	opts = opts.withDefaults()
	s := &Store{
		opts:   opts,
		shards: make([]shard, opts.Shards),
		byTag:  make(map[string]map[types.ObjectID]struct{}),
	}
	for i := range s.shards {
		s.shards[i].m = make(map[types.ObjectID]*record, 64)
	}
	return s
}

func (s *Store) shardFor(id types.ObjectID) *shard {
	// Ids are often sequential or strided; mix before taking the modulus.
	h := uint64(id)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return &s.shards[h%uint64(len(s.shards))]
}

// tryAddObject reserves a slot against MaxObjects.
func (s *Store) tryAddObject() bool {
	if s.opts.MaxObjects == 0 {
		s.mObjects.Add(1)
		return true
	}
	for {
		cur := s.mObjects.Load()
		if cur >= s.opts.MaxObjects {
			return false
		}
		if s.mObjects.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// Set stores a value with no tags or description. A nil value is a real
// object (IsNone reports it as none, but the id exists). Returns true if the
// id was created rather than overwritten; a false return with MaxObjects set
// can also mean the store is full and the value was dropped.
func (s *Store) Set(id types.ObjectID, value any) bool {
	return s.SetTagged(id, value, nil, "")
}

// SetTagged stores a value together with its search metadata. Tags are
// copied; overwriting an id relinks the tag index to the new tags.
func (s *Store) SetTagged(id types.ObjectID, value any, tags []string, description string) bool {
	rec := &record{value: value, description: description}
	if len(tags) > 0 {
		rec.tags = slices.Clone(tags)
	}

	sh := s.shardFor(id)
	sh.mu.Lock()
	prev, existed := sh.m[id]
	if !existed {
		if !s.tryAddObject() {
			sh.mu.Unlock()
			return false
		}
	}
	sh.m[id] = rec
	var oldTags []string
	if existed {
		oldTags = prev.tags
	}
	s.retag(id, oldTags, rec.tags)
	sh.mu.Unlock()

	s.mSets.Add(1)
	return !existed
}

// Get returns the stored value. A stored nil comes back as (nil, true);
// (nil, false) means the id is absent.
func (s *Store) Get(id types.ObjectID) (any, bool) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	rec, ok := sh.m[id]
	var val any
	if ok {
		val = rec.value
	}
	sh.mu.RUnlock()

	s.mGets.Add(1)
	if !ok {
		s.mMisses.Add(1)
		return nil, false
	}
	s.mHits.Add(1)
	return val, true
}

// GetDelete returns the stored value and removes it in one step. This is the
// pull semantics of an object request: once a worker hands an object out, it
// no longer owns it.
func (s *Store) GetDelete(id types.ObjectID) (any, bool) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	rec, ok := sh.m[id]
	if !ok {
		sh.mu.Unlock()
		s.mGets.Add(1)
		s.mMisses.Add(1)
		return nil, false
	}
	delete(sh.m, id)
	s.retag(id, rec.tags, nil)
	sh.mu.Unlock()

	s.mGets.Add(1)
	s.mHits.Add(1)
	s.mDels.Add(1)
	s.mObjects.Add(^uint64(0))
	return rec.value, true
}

// Delete removes the object. Returns false if the id was absent.
func (s *Store) Delete(id types.ObjectID) bool {
	sh := s.shardFor(id)
	sh.mu.Lock()
	rec, ok := sh.m[id]
	if ok {
		delete(sh.m, id)
		s.retag(id, rec.tags, nil)
	}
	sh.mu.Unlock()

	if ok {
		s.mDels.Add(1)
		s.mObjects.Add(^uint64(0))
	}
	return ok
}

func (s *Store) Exists(id types.ObjectID) bool {
	_, ok := s.Get(id)
	return ok
}

// IsNone reports whether the object is absent or stored as nil. Both answer
// "is there nothing here" the same way; Exists tells the two cases apart.
func (s *Store) IsNone(id types.ObjectID) bool {
	v, ok := s.Get(id)
	return !ok || v == nil
}

// Shape answers a shape query for the stored object. Only tensors carry a
// shape; the returned slice is a copy.
func (s *Store) Shape(id types.ObjectID) (types.Shape, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	rec, ok := sh.m[id]
	var val any
	if ok {
		val = rec.value
	}
	sh.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	switch t := val.(type) {
	case *types.Tensor:
		return slices.Clone(t.Shape), nil
	case types.Tensor:
		return slices.Clone(t.Shape), nil
	default:
		return nil, ErrNoShape
	}
}

// Search returns the ids of all objects matching every term. A term matches
// an object when it equals the decimal id, equals one of the tags, or is a
// substring of the description. No terms matches everything. Results are
// sorted ascending so repeated searches are comparable.
func (s *Store) Search(terms ...string) []types.ObjectID {
	s.mSearches.Add(1)
	var out []types.ObjectID
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for id, rec := range sh.m {
			if matchAll(id, rec, terms) {
				out = append(out, id)
			}
		}
		sh.mu.RUnlock()
	}
	slices.Sort(out)
	return out
}

func matchAll(id types.ObjectID, rec *record, terms []string) bool {
	idStr := strconv.FormatUint(uint64(id), 10)
	for _, term := range terms {
		if term == idStr {
			continue
		}
		if slices.Contains(rec.tags, term) {
			continue
		}
		if rec.description != "" && strings.Contains(rec.description, term) {
			continue
		}
		return false
	}
	return true
}

// WithTag returns the ids carrying the exact tag, sorted ascending.
func (s *Store) WithTag(tag string) []types.ObjectID {
	s.tagMu.RLock()
	set := s.byTag[tag]
	out := make([]types.ObjectID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	s.tagMu.RUnlock()
	slices.Sort(out)
	return out
}

// retag swaps an id's tag index entries. Callers hold the id's shard mutex,
// which keeps the index in step with the records.
func (s *Store) retag(id types.ObjectID, old, new []string) {
	if len(old) == 0 && len(new) == 0 {
		return
	}
	s.tagMu.Lock()
	for _, t := range old {
		if set := s.byTag[t]; set != nil {
			delete(set, id)
			if len(set) == 0 {
				delete(s.byTag, t)
			}
		}
	}
	for _, t := range new {
		set := s.byTag[t]
		if set == nil {
			set = make(map[types.ObjectID]struct{})
			s.byTag[t] = set
		}
		set[id] = struct{}{}
	}
	s.tagMu.Unlock()
}

// Stats is a point-in-time metrics snapshot. Reading it does not block store
// operations.
type Stats struct {
	Objects  uint64
	Sets     uint64
	Gets     uint64
	Hits     uint64
	Misses   uint64
	Dels     uint64
	Searches uint64
}

func (s *Store) Metrics() Stats {
	return Stats{
		Objects:  s.mObjects.Load(),
		Sets:     s.mSets.Load(),
		Gets:     s.mGets.Load(),
		Hits:     s.mHits.Load(),
		Misses:   s.mMisses.Load(),
		Dels:     s.mDels.Load(),
		Searches: s.mSearches.Load(),
	}
}

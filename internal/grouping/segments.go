package grouping

import (
	"groupstats/domain/grouping"
	"groupstats/domain/record"
)

// Segments holds the groups produced by one spec. Keys keep the order in
// which they were first seen; records within a group keep input order.
type Segments struct {
	Signature grouping.Signature

	keys   []grouping.Key
	groups [][]record.Record
	index  map[uint64][]int
}

func newSegments(sig grouping.Signature) *Segments {
	return &Segments{
		Signature: sig,
		index:     make(map[uint64][]int),
	}
}

func (s *Segments) find(key grouping.Key, hash uint64) int {
	for _, i := range s.index[hash] {
		if s.keys[i].Equal(key) {
			return i
		}
	}
	return -1
}

func (s *Segments) add(key grouping.Key, rec record.Record) {
	hash := key.Hash()
	if i := s.find(key, hash); i >= 0 {
		s.groups[i] = append(s.groups[i], rec)
		return
	}
	s.index[hash] = append(s.index[hash], len(s.keys))
	s.keys = append(s.keys, key)
	s.groups = append(s.groups, []record.Record{rec})
}

// Keys returns the group keys in first-seen order
func (s *Segments) Keys() []grouping.Key {
	return append([]grouping.Key(nil), s.keys...)
}

// Get returns the records of the group with the given key
func (s *Segments) Get(key grouping.Key) ([]record.Record, bool) {
	i := s.find(key, key.Hash())
	if i < 0 {
		return nil, false
	}
	return s.groups[i], true
}

// Len returns the number of groups
func (s *Segments) Len() int { return len(s.keys) }

// Size returns the number of grouped records
func (s *Segments) Size() int {
	n := 0
	for _, g := range s.groups {
		n += len(g)
	}
	return n
}

// Each visits groups in key order
func (s *Segments) Each(fn func(grouping.Key, []record.Record)) {
	for i, key := range s.keys {
		fn(key, s.groups[i])
	}
}

// Entry pairs a signature with the segments it produced
type Entry struct {
	Signature grouping.Signature
	Segments  *Segments
}

// SegmentMap holds one entry per requested spec, in request order.
// Specs with equal signatures produce separate entries.
type SegmentMap struct {
	entries []Entry
}

// Entries returns all entries in request order
func (m *SegmentMap) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Len returns the number of entries
func (m *SegmentMap) Len() int { return len(m.entries) }

// Lookup returns the first entry with the given signature
func (m *SegmentMap) Lookup(sig grouping.Signature) (*Segments, bool) {
	for _, e := range m.entries {
		if e.Signature.Equal(sig) {
			return e.Segments, true
		}
	}
	return nil, false
}

// Flatten returns the segments in request order
func (m *SegmentMap) Flatten() []*Segments {
	out := make([]*Segments, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Segments
	}
	return out
}

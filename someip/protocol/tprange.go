/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package protocol

// tpRange is a half-open byte interval [start, end) within a reassembly buffer.
type tpRange struct {
	start uint32
	end   uint32
}

// isConnected reports whether r and other touch or overlap, i.e. whether
// merging them yields a single contiguous interval.
func (r tpRange) isConnected(other tpRange) bool {
	return r.isValueConnected(other.start) || r.isValueConnected(other.end) ||
		other.isValueConnected(r.start) || other.isValueConnected(r.end)
}

func (r tpRange) isValueConnected(value uint32) bool {
	return r.start <= value && r.end >= value
}

// merge returns the union of r and other if they are connected, and ok=false
// otherwise. The merged bounds are the componentwise min/max.
func (r tpRange) merge(other tpRange) (tpRange, bool) {
	if !r.isConnected(other) {
		return tpRange{}, false
	}
	merged := tpRange{start: r.start, end: r.end}
	if other.start < merged.start {
		merged.start = other.start
	}
	if other.end > merged.end {
		merged.end = other.end
	}
	return merged, true
}

// tpRangeSet is an ordered, non-overlapping set of half-open intervals. New
// intervals are folded into any connected existing interval on insert.
type tpRangeSet struct {
	ranges []tpRange
}

// insert merges r into the set, folding it with any number of connected
// existing intervals.
func (s *tpRangeSet) insert(r tpRange) {
	merged := r
	kept := s.ranges[:0]
	for _, existing := range s.ranges {
		if m, ok := merged.merge(existing); ok {
			merged = m
			continue
		}
		kept = append(kept, existing)
	}
	s.ranges = append(kept, merged)
}

// isSingleFromZero reports whether the set consists of exactly one interval
// starting at offset 0.
func (s *tpRangeSet) isSingleFromZero() bool {
	return len(s.ranges) == 1 && s.ranges[0].start == 0
}

// singleRangeEnd returns the end of the set's sole interval. Only valid
// when isSingleFromZero reports true.
func (s *tpRangeSet) singleRangeEnd() uint32 {
	return s.ranges[0].end
}

// clear empties the set, retaining its backing array for reuse.
func (s *tpRangeSet) clear() {
	s.ranges = s.ranges[:0]
}

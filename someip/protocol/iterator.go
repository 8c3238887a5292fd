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

// SliceIterator walks the concatenated SOME/IP messages in a single
// transport payload (one UDP datagram or one TCP read). It follows the
// standard Go iterator shape: call Next in a loop, then inspect View or Err.
//
// On the first framing error, Next reports it once and then returns false
// forever — the remaining bytes are never revisited, matching the non-goal
// of resynchronizing after a framing error.
type SliceIterator struct {
	remaining []byte
	view      MessageView
	err       error
	done      bool
}

// NewSliceIterator returns an iterator over the messages packed into b.
func NewSliceIterator(b []byte) *SliceIterator {
	return &SliceIterator{remaining: b}
}

// Next advances the iterator. It returns false once the payload is
// exhausted or a framing error has been reported.
func (it *SliceIterator) Next() bool {
	if it.done {
		return false
	}
	if len(it.remaining) == 0 {
		it.done = true
		return false
	}
	view, err := FromSlice(it.remaining)
	if err != nil {
		it.err = err
		it.view = MessageView{}
		it.remaining = nil
		it.done = true
		return true
	}
	it.view = view
	it.err = nil
	it.remaining = it.remaining[len(view.Slice()):]
	return true
}

// View returns the message view yielded by the most recent call to Next, or
// the zero MessageView if that call produced an error.
func (it *SliceIterator) View() MessageView { return it.view }

// Err returns the framing error yielded by the most recent call to Next, if any.
func (it *SliceIterator) Err() error { return it.err }

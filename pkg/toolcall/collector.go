// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package toolcall records the tool invocations observed within one AI
// stream, so the stream event handler can pop the matching call when its
// result arrives and the AI handler can reconstruct the final message.
package toolcall

import "github.com/a2aproject/a2a-go/a2a"

// Record is one observed tool invocation within a stream.
type Record struct {
	Name       string
	ArtifactID a2a.ArtifactID
	Position   int
}

// Collector is a per-stream, unsynchronized accumulator: one stream is
// processed by one goroutine at a time, matching the single-threaded
// cooperative scheduling model.
type Collector struct {
	calls     []Record
	positions map[int]a2a.ArtifactID
	next      int
}

// New creates an empty collector.
func New() *Collector {
	return &Collector{positions: make(map[int]a2a.ArtifactID)}
}

// Push records a new tool call, returning its position.
func (c *Collector) Push(name string, artifactID a2a.ArtifactID) int {
	pos := c.next
	c.next++
	c.calls = append(c.calls, Record{Name: name, ArtifactID: artifactID, Position: pos})
	c.positions[pos] = artifactID
	return pos
}

// Pop removes and returns the most recently pushed call not yet popped
// (LIFO): a tool-result event is matched to the latest outstanding call.
// With several calls outstanding, results are matched in reverse call order.
func (c *Collector) Pop() (Record, bool) {
	if len(c.calls) == 0 {
		return Record{}, false
	}
	last := c.calls[len(c.calls)-1]
	c.calls = c.calls[:len(c.calls)-1]
	delete(c.positions, last.Position)
	return last, true
}

// Len reports how many calls are still awaiting a result.
func (c *Collector) Len() int { return len(c.calls) }

// ArtifactIDAt returns the artifact id recorded for a call position.
func (c *Collector) ArtifactIDAt(position int) (a2a.ArtifactID, bool) {
	id, ok := c.positions[position]
	return id, ok
}

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

// Package llmstream defines the generic, provider-agnostic delta stream the
// core consumes. The concrete LLM provider is out of scope; any provider
// adapter only needs to produce a Seq2 of Event.
package llmstream

import "iter"

// Kind tags the variant of a streamed delta.
type Kind string

const (
	KindTextDelta      Kind = "text-delta"
	KindTextEnd        Kind = "text-end"
	KindReasoningStart Kind = "reasoning-start"
	KindReasoningDelta Kind = "reasoning-delta"
	KindReasoningEnd   Kind = "reasoning-end"
	KindToolCall       Kind = "tool-call"
	KindToolResult     Kind = "tool-result"
	KindToolInputDelta Kind = "tool-input-delta"
	KindToolInputEnd   Kind = "tool-input-end"
	KindUnknown        Kind = "unknown"
)

// Event is one delta from the LLM provider. Only the fields relevant to
// Kind are populated; this mirrors the tagged-union cross-boundary payload
// pattern used throughout the runtime (stream events, workflow yields,
// resume inputs all follow the same "tag plus validate" discipline).
type Event struct {
	Kind Kind

	// Text carries the delta text for text-delta/reasoning-delta. Absent
	// (empty string with HasText=false) deltas are ignored by the handler.
	Text    string
	HasText bool

	// ToolCallID, ToolName, ToolInput describe a tool-call event.
	ToolCallID string
	ToolName   string
	ToolInput  map[string]any

	// ToolResultID/ToolResultName/ToolResultOutput describe a tool-result
	// event.
	ToolResultID     string
	ToolResultName   string
	ToolResultOutput any

	// Raw carries the untouched provider payload for the permissive
	// catchall case (KindUnknown), kept for diagnostics only.
	Raw any
}

// Stream is the lazy sequence a provider adapter produces: each step is an
// Event or a terminal error. The sequence may end normally, end in error, or
// be empty, per the data model.
type Stream = iter.Seq2[Event, error]

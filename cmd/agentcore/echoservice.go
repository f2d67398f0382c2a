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

package main

import (
	"context"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/kadirpekel/agentcore/pkg/aiturn"
	"github.com/kadirpekel/agentcore/pkg/llmstream"
)

// echoService is the built-in aiturn.Service this core ships with. The LLM
// provider itself is out of scope (spec §1: "the core consumes a generic
// typed event stream"), so `agentcore serve` needs a stand-in stream
// producer to be runnable without a provider adapter wired in; it deltas
// the inbound message text back a word at a time, which is enough to
// exercise the stream processor and tool-bundle plumbing end to end.
type echoService struct{}

func (echoService) StreamMessage(_ context.Context, req aiturn.Request) llmstream.Stream {
	text := messageText(req.Message)
	words := strings.Fields(text)

	return func(yield func(llmstream.Event, error) bool) {
		if len(words) == 0 {
			yield(llmstream.Event{Kind: llmstream.KindTextDelta, Text: "(no input)", HasText: true}, nil)
			yield(llmstream.Event{Kind: llmstream.KindTextEnd}, nil)
			return
		}
		for i, w := range words {
			delta := w
			if i < len(words)-1 {
				delta += " "
			}
			if !yield(llmstream.Event{Kind: llmstream.KindTextDelta, Text: delta, HasText: true}, nil) {
				return
			}
		}
		yield(llmstream.Event{Kind: llmstream.KindTextEnd}, nil)
	}
}

func messageText(msg *a2a.Message) string {
	if msg == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range msg.Parts {
		if tp, ok := part.(a2a.TextPart); ok {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

var _ aiturn.Service = echoService{}

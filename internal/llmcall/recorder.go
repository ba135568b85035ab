package llmcall

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Recorder keeps an in-memory log of LLM calls.
type Recorder struct {
	mu     sync.Mutex
	calls  []Call
	logger *slog.Logger
}

// NewRecorder creates a new in-memory call recorder.
func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{logger: logger}
}

// Record stores a call. ID and Timestamp are filled in when empty.
func (r *Recorder) Record(call Call) Call {
	if call.ID == "" {
		call.ID = uuid.New().String()
	}
	if call.Timestamp.IsZero() {
		call.Timestamp = time.Now()
	}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	if call.Success {
		r.logger.Debug("recorded LLM call",
			"prompt_key", call.PromptKey,
			"provider", call.Provider,
			"model", call.Model,
			"attempt", call.Attempt,
			"latency_ms", call.LatencyMs)
	} else {
		r.logger.Warn("recorded failed LLM call",
			"prompt_key", call.PromptKey,
			"provider", call.Provider,
			"attempt", call.Attempt,
			"error", call.Error)
	}

	return call
}

// Calls returns copies of all recorded calls, oldest first.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Summary returns aggregate stats over all recorded calls.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s Summary
	for _, c := range r.calls {
		s.TotalCalls++
		if !c.Success {
			s.Failures++
		}
		s.InputTokens += c.InputTokens
		s.OutputTokens += c.OutputTokens
	}
	return s
}

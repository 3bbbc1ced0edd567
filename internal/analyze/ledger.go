package analyze

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Call types recorded in the cost ledger.
const (
	CallTypeChunkSummary  = "preprocessing"
	CallTypeFinalAnalysis = "final_processing"
)

// usage source values.
const (
	UsageActual   = "actual"
	UsageEstimate = "estimate"
)

// CallRecord is one entry in the append-only cost ledger. Exactly one of
// the actual or estimate token triples is populated on success; failed
// calls carry only Error and timing.
type CallRecord struct {
	Timestamp       string  `json:"timestamp"`
	CallType        string  `json:"call_type"`
	Model           string  `json:"model"`
	DurationSeconds float64 `json:"duration_seconds"`
	Temperature     float32 `json:"temperature,omitempty"`
	MaxTokens       int     `json:"max_tokens,omitempty"`

	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	PromptTokensEstimate     int `json:"prompt_tokens_estimate,omitempty"`
	CompletionTokensEstimate int `json:"completion_tokens_estimate,omitempty"`
	TotalTokensEstimate      int `json:"total_tokens_estimate,omitempty"`

	UsageSource string `json:"usage_source,omitempty"`
	Error       string `json:"error,omitempty"`
}

// modelPricing is USD per one million tokens.
type modelPricing struct {
	inputPerMillion  float64
	outputPerMillion float64
}

// pricing holds the known per-model rates.
var pricing = map[string]modelPricing{
	"openai/gpt-oss-120b": {inputPerMillion: 0.15, outputPerMillion: 0.75},
}

// Ledger accumulates one CallRecord per provider call attempt, successes
// and failures alike. The zero value is ready to use. Not safe for
// concurrent use; the pipeline appends from a single goroutine.
type Ledger struct {
	records []CallRecord
}

// Append adds a record to the ledger.
func (l *Ledger) Append(rec CallRecord) {
	l.records = append(l.records, rec)
}

// Records returns the recorded calls in append order.
func (l *Ledger) Records() []CallRecord {
	return l.records
}

// Len reports the number of recorded calls.
func (l *Ledger) Len() int {
	return len(l.records)
}

// MarshalJSON renders the ledger as the bare record array.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	records := l.records
	if records == nil {
		records = []CallRecord{}
	}
	return json.Marshal(records)
}

// JSON renders the ledger as indented JSON for the cost metadata file.
func (l *Ledger) JSON() ([]byte, error) {
	records := l.records
	if records == nil {
		records = []CallRecord{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// Summary aggregates the ledger for display and reporting.
type Summary struct {
	TotalCalls      int
	SuccessfulCalls int
	FailedCalls     int

	TotalTokens      int
	PromptTokens     int
	CompletionTokens int

	AverageTokensPerCall float64
	TotalDurationSeconds float64

	ActualUsageCalls    int
	EstimatedUsageCalls int

	ModelUsed string

	InputCostUSD  float64
	OutputCostUSD float64
	TotalCostUSD  float64

	InputPricePerMillion  string
	OutputPricePerMillion string
}

// Summarize folds the ledger into a Summary. Records with actual usage
// contribute their exact token counts; estimate records contribute their
// estimates. Failed calls count toward totals but not token sums.
func (l *Ledger) Summarize() Summary {
	s := Summary{TotalCalls: len(l.records)}

	for _, rec := range l.records {
		if s.ModelUsed == "" {
			s.ModelUsed = rec.Model
		}
		if rec.Error != "" {
			s.FailedCalls++
			continue
		}
		s.SuccessfulCalls++
		s.TotalDurationSeconds += rec.DurationSeconds

		if rec.UsageSource == UsageActual {
			s.ActualUsageCalls++
			s.TotalTokens += rec.TotalTokens
			s.PromptTokens += rec.PromptTokens
			s.CompletionTokens += rec.CompletionTokens
		} else {
			s.EstimatedUsageCalls++
			s.TotalTokens += rec.TotalTokensEstimate
			s.PromptTokens += rec.PromptTokensEstimate
			s.CompletionTokens += rec.CompletionTokensEstimate
		}
	}

	if s.SuccessfulCalls > 0 {
		s.AverageTokensPerCall = round1(float64(s.TotalTokens) / float64(s.SuccessfulCalls))
	}
	s.TotalDurationSeconds = round2(s.TotalDurationSeconds)

	rates, ok := pricing[s.ModelUsed]
	if !ok {
		return s
	}
	s.InputCostUSD = round6(float64(s.PromptTokens) / 1_000_000 * rates.inputPerMillion)
	s.OutputCostUSD = round6(float64(s.CompletionTokens) / 1_000_000 * rates.outputPerMillion)
	s.TotalCostUSD = round6(s.InputCostUSD + s.OutputCostUSD)
	s.InputPricePerMillion = fmt.Sprintf("$%g", rates.inputPerMillion)
	s.OutputPricePerMillion = fmt.Sprintf("$%g", rates.outputPerMillion)
	return s
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round6(v float64) float64 { return math.Round(v*1_000_000) / 1_000_000 }

// now is stubbed in tests.
var now = time.Now

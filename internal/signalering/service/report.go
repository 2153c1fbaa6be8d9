package service

import (
	"sync"

	"signalering/internal/signalering/models"
)

// Report summarizes one dispatch run.
type Report struct {
	RunID      string                    `json:"run_id"`
	Kind       models.Kind               `json:"kind"`
	Candidates int                       `json:"candidates"`
	Sent       int                       `json:"sent"`
	Failed     int                       `json:"failed"`
	Skipped    map[models.SkipReason]int `json:"skipped,omitempty"`
	Corrected  int                       `json:"corrected"`
}

// tally is the concurrent builder of a Report.
type tally struct {
	mu     sync.Mutex
	report Report
}

func newTally(runID string, kind models.Kind) *tally {
	return &tally{report: Report{RunID: runID, Kind: kind, Skipped: make(map[models.SkipReason]int)}}
}

func (t *tally) candidates(n int) {
	t.mu.Lock()
	t.report.Candidates += n
	t.mu.Unlock()
}

func (t *tally) sent() {
	t.mu.Lock()
	t.report.Sent++
	t.mu.Unlock()
}

func (t *tally) failed() {
	t.mu.Lock()
	t.report.Failed++
	t.mu.Unlock()
}

func (t *tally) skipped(reason models.SkipReason) {
	t.mu.Lock()
	t.report.Skipped[reason]++
	t.mu.Unlock()
}

func (t *tally) corrected(n int) {
	t.mu.Lock()
	t.report.Corrected += n
	t.mu.Unlock()
}

func (t *tally) result() *Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.report
	out.Skipped = make(map[models.SkipReason]int, len(t.report.Skipped))
	for k, v := range t.report.Skipped {
		out.Skipped[k] = v
	}
	return &out
}

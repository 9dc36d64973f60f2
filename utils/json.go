package utils

import (
	"encoding/json"
	"os"
	"time"
)

// RunSummary is the machine-readable record of one crawl.
type RunSummary struct {
	RunID      string       `json:"run_id"`
	SearchTerm string       `json:"search_term,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	OutFile    string       `json:"out_file,omitempty"`
	Stats      SummaryStats `json:"stats"`
}

// WriteJSON writes the run summary as indented JSON.
func WriteJSON(filename string, summary RunSummary) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

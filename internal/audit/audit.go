// Package audit keeps an append-only JSON-lines history of routine runs.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Entry records one routine run.
type Entry struct {
	Time    time.Time     `json:"time"`
	RunID   string        `json:"run_id"`
	Routine string        `json:"routine"`
	Outcome string        `json:"outcome"` // "completed" | "interrupted" | "failed"
	Reason  string        `json:"reason,omitempty"`
	Ticks   uint64        `json:"ticks"`
	Elapsed time.Duration `json:"elapsed"`
	Error   string        `json:"error,omitempty"`
}

// Log appends e to the history at path. Errors are ignored so that a
// broken history file never stops the robot.
func Log(path string, e Entry) {
	if path == "" {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	line, _ := json.Marshal(e)
	f.Write(append(line, '\n'))
}

// Read loads entries from path, optionally filtered by routine name.
// It returns the last limit entries (all if limit <= 0). A missing file
// is an empty history.
func Read(path, routineFilter string, limit int) ([]Entry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue // skip malformed lines
		}
		if routineFilter != "" && e.Routine != routineFilter {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

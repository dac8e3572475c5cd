package testcorpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/dueline/internal/domain/model"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Paths locates a written corpus.
type Paths struct {
	Roster string
	Logs   string
}

type logFile struct {
	Date    string                  `json:"date"`
	Players []model.DailyGameRecord `json:"players"`
}

// Write stores c under dir as roster.json plus logs/YYYY-MM-DD.json.
func Write(dir string, c Corpus) (Paths, error) {
	p := Paths{
		Roster: filepath.Join(dir, "roster.json"),
		Logs:   filepath.Join(dir, "logs"),
	}
	if err := os.MkdirAll(p.Logs, directoryPermission); err != nil {
		return Paths{}, fmt.Errorf("failed to create logs directory: %w", err)
	}
	if err := writeJSON(p.Roster, c.Roster); err != nil {
		return Paths{}, err
	}
	for _, d := range c.Days {
		date := d.Date.Format(model.DateLayout)
		name := filepath.Join(p.Logs, date+".json")
		if err := writeJSON(name, logFile{Date: date, Players: d.Records}); err != nil {
			return Paths{}, err
		}
	}
	return p, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, b, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

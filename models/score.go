package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ScoreEntry records a won game. The JSON names match existing save files.
type ScoreEntry struct {
	PlayerName   string    `json:"playerName"`
	TimeTaken    int       `json:"timeTaken"`
	DateAchieved time.Time `json:"dateAchieved"`
	Difficulty   string    `json:"difficulty"`
}

// Older save files may carry local timestamps without an offset, with up to
// seven fractional digits.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// UnmarshalJSON accepts dateAchieved as RFC 3339 or as an offset-less
// ISO-8601 local time. Entries are always written back as RFC 3339.
func (e *ScoreEntry) UnmarshalJSON(data []byte) error {
	type plain ScoreEntry
	var raw struct {
		plain
		DateAchieved string `json:"dateAchieved"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = ScoreEntry(raw.plain)
	if raw.DateAchieved == "" {
		return nil
	}
	when, err := ParseDate(raw.DateAchieved)
	if err != nil {
		return err
	}
	e.DateAchieved = when
	return nil
}

// ParseDate reads a dateAchieved value. Timestamps without an offset are
// taken as local time.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("dateAchieved %q: not an ISO-8601 timestamp", s)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"occupancy_backend/internal/occupancy"
)

func parseDateInput(input string, now time.Time) (time.Time, error) {
	today := occupancy.DateOf(now)
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "today":
		return today, nil
	}
	parsed, err := occupancy.ParseDate(strings.TrimSpace(input))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", input)
	}
	return parsed, nil
}

func writeJSON(value interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

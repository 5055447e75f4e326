package config

import (
	"fmt"
	"strings"
	"time"

	iso8601 "github.com/senseyeio/duration"
	"gopkg.in/yaml.v3"
)

// Duration accepts either an ISO8601 duration (PT30S) or a Go duration (30s)
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)

	if strings.HasPrefix(value, "P") {
		isoDuration, err := iso8601.ParseISO8601(value)
		if err != nil {
			return 0, err
		}

		// Calendar units are resolved from a fixed reference so the result is stable
		reference := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		return isoDuration.Shift(reference).Sub(reference), nil
	}

	return time.ParseDuration(value)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q at line %d: %w", raw, value.Line, err)
	}

	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

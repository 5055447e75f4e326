package util

import (
	"os"
	"strconv"
	"strings"
)

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)
		if len(pair) != 2 {
			continue
		}

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// GetEnvironmentString returns the value of key or fallback when it is unset or empty
func GetEnvironmentString(env map[string]string, key string, fallback string) string {
	if value := env[key]; value != "" {
		return value
	}

	return fallback
}

// GetEnvironmentInt parses key as an integer, returning fallback when it is unset
func GetEnvironmentInt(env map[string]string, key string, fallback int) (int, error) {
	value := env[key]
	if value == "" {
		return fallback, nil
	}

	return strconv.Atoi(value)
}

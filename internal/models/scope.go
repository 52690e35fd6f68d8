package models

import (
	"errors"
	"fmt"
	"strings"
)

// ScopePublished selects the timetable the administrators published.
const ScopePublished = "published"

const scopeAlgorithmPrefix = "algorithm:"

// Algorithms produced by the generation backend.
var Algorithms = []string{"GA", "CO", "RL", "BC", "PSO"}

// ErrNothingPublished is returned when no timetable has been published yet.
var ErrNothingPublished = errors.New("no timetable has been published")

// ParseScope validates a snapshot scope and returns the algorithm it names, or "" for the
// published scope. An empty scope means published.
func ParseScope(scope string) (string, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" || scope == ScopePublished {
		return "", nil
	}
	if !strings.HasPrefix(scope, scopeAlgorithmPrefix) {
		return "", fmt.Errorf("unknown scope %q", scope)
	}
	algorithm := strings.ToUpper(strings.TrimPrefix(scope, scopeAlgorithmPrefix))
	for _, known := range Algorithms {
		if known == algorithm {
			return algorithm, nil
		}
	}
	return "", fmt.Errorf("unknown algorithm %q", algorithm)
}

// NormalizeScope returns the canonical spelling of a valid scope.
func NormalizeScope(scope string) (string, error) {
	algorithm, err := ParseScope(scope)
	if err != nil {
		return "", err
	}
	if algorithm == "" {
		return ScopePublished, nil
	}
	return AlgorithmScope(algorithm), nil
}

// AlgorithmScope builds the scope name for one algorithm.
func AlgorithmScope(algorithm string) string {
	return scopeAlgorithmPrefix + strings.ToUpper(algorithm)
}

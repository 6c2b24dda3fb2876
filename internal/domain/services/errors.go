package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputTooShort is returned for content below MinInputLength characters
	ErrInputTooShort = errors.New("input too short")

	// ErrEmptyClassification is returned when the classifier ranks no labels
	ErrEmptyClassification = errors.New("classifier returned no labels")

	errEmptyHost = errors.New("url has no host")
)

// InputTooShortMessage is the user facing text for ErrInputTooShort
const InputTooShortMessage = "Please enter at least 5 characters for analysis."

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func writeNumbered(b *strings.Builder, lines []string) {
	for i, line := range lines {
		fmt.Fprintf(b, "%d. %s\n", i+1, line)
	}
}

package ai

import (
	"context"
	"sync/atomic"

	"phishguard/internal/domain/models"
)

// StaticZeroShot is a ZeroShotClassifier returning a fixed ranking. It backs
// tests and offline runs.
type StaticZeroShot struct {
	Scores map[string]float64
	Err    error

	calls atomic.Int64
}

// Classify returns the configured score for each label in the given order
func (s *StaticZeroShot) Classify(_ context.Context, _ string, labels []string) (*models.ZeroShotResult, error) {
	s.calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	result := &models.ZeroShotResult{}
	for _, label := range labels {
		if score, ok := s.Scores[label]; ok {
			result.Labels = append(result.Labels, label)
			result.Scores = append(result.Scores, score)
		}
	}
	return result, nil
}

// Calls returns how many times Classify was called
func (s *StaticZeroShot) Calls() int64 {
	return s.calls.Load()
}

// StaticSentiment is a SentimentClassifier returning a fixed result
type StaticSentiment struct {
	Result models.SentimentResult
	Err    error

	calls atomic.Int64
}

// Sentiment returns the configured result
func (s *StaticSentiment) Sentiment(_ context.Context, _ string) (*models.SentimentResult, error) {
	s.calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	r := s.Result
	return &r, nil
}

// Calls returns how many times Sentiment was called
func (s *StaticSentiment) Calls() int64 {
	return s.calls.Load()
}

// Package ai holds the model capabilities used by the message analyzer and
// the clients that serve them over a Hugging Face Inference compatible API.
package ai

import (
	"context"
	"errors"

	"phishguard/internal/domain/models"
)

var (
	// ErrModelUnavailable is returned when no model endpoint is configured
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrModelLoading is returned while the inference endpoint is still loading a model
	ErrModelLoading = errors.New("model is loading")
)

// ZeroShotClassifier ranks candidate labels for a text
type ZeroShotClassifier interface {
	Classify(ctx context.Context, text string, labels []string) (*models.ZeroShotResult, error)
}

// SentimentClassifier labels a text POSITIVE or NEGATIVE with a score
type SentimentClassifier interface {
	Sentiment(ctx context.Context, text string) (*models.SentimentResult, error)
}

// Preloader is implemented by capabilities that can be loaded ahead of first use
type Preloader interface {
	Load(ctx context.Context) error
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"phishguard/internal/domain/models"
	"phishguard/pkg/logger"
)

// warmupText is sent once when a model is loaded
const warmupText = "Your order has shipped."

// InferenceConfig holds inference client configuration
type InferenceConfig struct {
	Endpoint        string
	APIToken        string
	ClassifierModel string
	SentimentModel  string
	Timeout         time.Duration
	WaitForModel    bool
}

// InferenceClient talks to a Hugging Face Inference compatible endpoint
type InferenceClient struct {
	httpClient *http.Client
	logger     *logger.Logger
	config     InferenceConfig
}

// NewInferenceClient creates a new inference client
func NewInferenceClient(cfg InferenceConfig, log *logger.Logger) *InferenceClient {
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	return &InferenceClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.WithComponent("inference-client"),
		config: cfg,
	}
}

// Configured reports whether an endpoint is set
func (c *InferenceClient) Configured() bool {
	return c.config.Endpoint != ""
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type zeroShotRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters zeroShotParams   `json:"parameters"`
	Options    inferenceOptions `json:"options"`
}

type zeroShotParams struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type sentimentRequest struct {
	Inputs  string           `json:"inputs"`
	Options inferenceOptions `json:"options"`
}

type inferenceError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// ZeroShot returns a classifier bound to the configured classifier model
func (c *InferenceClient) ZeroShot() *ZeroShotModel {
	return &ZeroShotModel{client: c, model: c.config.ClassifierModel}
}

// Sentiment returns a classifier bound to the configured sentiment model
func (c *InferenceClient) Sentiment() *SentimentModel {
	return &SentimentModel{client: c, model: c.config.SentimentModel}
}

// ZeroShotModel is a ZeroShotClassifier served by an InferenceClient
type ZeroShotModel struct {
	client *InferenceClient
	model  string
}

// Classify ranks labels for text
func (m *ZeroShotModel) Classify(ctx context.Context, text string, labels []string) (*models.ZeroShotResult, error) {
	req := zeroShotRequest{
		Inputs: text,
		Parameters: zeroShotParams{
			CandidateLabels: labels,
			MultiLabel:      false,
		},
		Options: inferenceOptions{WaitForModel: m.client.config.WaitForModel},
	}

	var result models.ZeroShotResult
	if err := m.client.post(ctx, m.model, req, &result); err != nil {
		return nil, err
	}
	if len(result.Labels) != len(result.Scores) {
		return nil, fmt.Errorf("model %s returned %d labels and %d scores", m.model, len(result.Labels), len(result.Scores))
	}
	return &result, nil
}

// SentimentModel is a SentimentClassifier served by an InferenceClient
type SentimentModel struct {
	client *InferenceClient
	model  string
}

// Sentiment labels text
func (m *SentimentModel) Sentiment(ctx context.Context, text string) (*models.SentimentResult, error) {
	req := sentimentRequest{
		Inputs:  text,
		Options: inferenceOptions{WaitForModel: m.client.config.WaitForModel},
	}

	var raw json.RawMessage
	if err := m.client.post(ctx, m.model, req, &raw); err != nil {
		return nil, err
	}

	candidates, err := parseSentiment(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sentiment response: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("model %s returned no sentiment", m.model)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	best := candidates[0]
	best.Label = strings.ToUpper(best.Label)
	return &best, nil
}

// parseSentiment accepts both the nested [[...]] and the flat [...] response shapes
func parseSentiment(raw json.RawMessage) ([]models.SentimentResult, error) {
	var nested [][]models.SentimentResult
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []models.SentimentResult
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	return flat, nil
}

// LoadZeroShot is a Loader that checks the endpoint and warms the classifier model
func (c *InferenceClient) LoadZeroShot(ctx context.Context) (ZeroShotClassifier, error) {
	if !c.Configured() {
		return nil, ErrModelUnavailable
	}
	m := c.ZeroShot()
	if _, err := m.Classify(ctx, warmupText, []string{"notification", "conversation"}); err != nil {
		return nil, fmt.Errorf("failed to load classifier model %s: %w", m.model, err)
	}
	c.logger.Info().Str("model", m.model).Msg("classifier model loaded")
	return m, nil
}

// LoadSentiment is a Loader that checks the endpoint and warms the sentiment model
func (c *InferenceClient) LoadSentiment(ctx context.Context) (SentimentClassifier, error) {
	if !c.Configured() {
		return nil, ErrModelUnavailable
	}
	m := c.Sentiment()
	if _, err := m.Sentiment(ctx, warmupText); err != nil {
		return nil, fmt.Errorf("failed to load sentiment model %s: %w", m.model, err)
	}
	c.logger.Info().Str("model", m.model).Msg("sentiment model loaded")
	return m, nil
}

func (c *InferenceClient) post(ctx context.Context, model string, body, out any) error {
	if !c.Configured() {
		return ErrModelUnavailable
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.config.Endpoint + "/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call model %s: %w", model, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug().
		Str("model", model).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("inference call")

	if resp.StatusCode != http.StatusOK {
		var apiErr inferenceError
		_ = json.Unmarshal(respBody, &apiErr)
		if resp.StatusCode == http.StatusServiceUnavailable {
			return fmt.Errorf("%w: %s (estimated %.0fs)", ErrModelLoading, model, apiErr.EstimatedTime)
		}
		msg := apiErr.Error
		if msg == "" {
			msg = string(respBody)
		}
		return fmt.Errorf("model %s returned status %d: %s", model, resp.StatusCode, msg)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

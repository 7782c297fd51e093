package repository

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"macrodesk/internal/analyzer/config"
	"macrodesk/internal/analyzer/dto"
	"macrodesk/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// HuggingFaceRepository calls the Hugging Face Inference API for sentiment
// and zero-shot topic classification.
type HuggingFaceRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	sentimentCache *cache.Cache
}

// NewHuggingFaceRepository creates a repository serving both the sentiment
// and topic classifier interfaces.
func NewHuggingFaceRepository(cfg *config.Config, log *logger.Logger) *HuggingFaceRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.HuggingFace.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &HuggingFaceRepository{
		client: &http.Client{
			Timeout: cfg.HuggingFace.Timeout,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		sentimentCache: cache.New(30*time.Minute, 10*time.Minute),
	}
}

// ClassifyBatch classifies a batch of texts and returns one result per input
// in input order. A result-count mismatch is returned as an error because a
// silent misalignment would corrupt every downstream score.
func (r *HuggingFaceRepository) ClassifyBatch(ctx context.Context, texts []string) ([]dto.LabelScore, error) {
	if len(texts) == 0 {
		return []dto.LabelScore{}, nil
	}

	results := make([]dto.LabelScore, len(texts))
	missing := make([]int, 0, len(texts))
	missingTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		if cached, ok := r.sentimentCache.Get(textKey(text)); ok {
			results[i] = cached.(dto.LabelScore)
			continue
		}
		missing = append(missing, i)
		missingTexts = append(missingTexts, text)
	}

	if len(missing) == 0 {
		return results, nil
	}

	payload := dto.SentimentRequest{
		Inputs:  missingTexts,
		Options: dto.InferenceOptions{WaitForModel: true, UseCache: true},
	}

	body, err := r.post(ctx, r.cfg.HuggingFace.SentimentModel, payload)
	if err != nil {
		return nil, err
	}

	var ranked [][]dto.LabelScore
	if err := json.Unmarshal(body, &ranked); err != nil {
		return nil, fmt.Errorf("failed to decode sentiment response: %w", err)
	}

	if len(ranked) != len(missingTexts) {
		return nil, fmt.Errorf("sentiment result count mismatch: got %d, want %d", len(ranked), len(missingTexts))
	}

	for j, perText := range ranked {
		result := topLabel(perText)
		results[missing[j]] = result
		r.sentimentCache.Set(textKey(missingTexts[j]), result, cache.DefaultExpiration)
	}

	return results, nil
}

// ClassifySingle classifies one text, the fallback mode when batching fails.
func (r *HuggingFaceRepository) ClassifySingle(ctx context.Context, text string) (dto.LabelScore, error) {
	if cached, ok := r.sentimentCache.Get(textKey(text)); ok {
		return cached.(dto.LabelScore), nil
	}

	results, err := r.ClassifyBatch(ctx, []string{text})
	if err != nil {
		return dto.LabelScore{}, err
	}
	return results[0], nil
}

// RankLabels runs zero-shot classification of texts over a closed label set.
func (r *HuggingFaceRepository) RankLabels(ctx context.Context, texts []string, labels []string) ([]dto.ZeroShotResult, error) {
	if len(texts) == 0 {
		return []dto.ZeroShotResult{}, nil
	}

	payload := dto.ZeroShotRequest{
		Inputs: texts,
		Parameters: dto.ZeroShotParameters{
			CandidateLabels: labels,
			MultiLabel:      false,
		},
		Options: dto.InferenceOptions{WaitForModel: true, UseCache: true},
	}

	body, err := r.post(ctx, r.cfg.HuggingFace.ZeroShotModel, payload)
	if err != nil {
		return nil, err
	}

	var results []dto.ZeroShotResult
	if err := json.Unmarshal(body, &results); err != nil {
		// A single input may come back as a bare object instead of a list.
		var single dto.ZeroShotResult
		if err2 := json.Unmarshal(body, &single); err2 != nil {
			return nil, fmt.Errorf("failed to decode zero-shot response: %w", err)
		}
		results = []dto.ZeroShotResult{single}
	}

	if len(results) != len(texts) {
		return nil, fmt.Errorf("zero-shot result count mismatch: got %d, want %d", len(results), len(texts))
	}

	return results, nil
}

func (r *HuggingFaceRepository) post(ctx context.Context, model string, payload interface{}) ([]byte, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/%s", r.cfg.HuggingFace.BaseURL, model)
	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.HuggingFace.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.HuggingFace.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to inference API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Received non-OK response from inference API",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("model", model),
		)
		return nil, fmt.Errorf("received non-OK response from inference API: %d - %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// topLabel picks the highest-scoring label for one text. An empty result
// degrades to a neutral label instead of failing the batch.
func topLabel(ranked []dto.LabelScore) dto.LabelScore {
	if len(ranked) == 0 {
		return dto.LabelScore{Label: "neutral", Score: 0}
	}
	best := ranked[0]
	for _, ls := range ranked[1:] {
		if ls.Score > best.Score {
			best = ls
		}
	}
	return best
}

func textKey(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

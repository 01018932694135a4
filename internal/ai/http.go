package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/campusvoice/backend/internal/models"
)

// HTTPClassifier delegates classification to an external model service.
// The response must carry the same closed-set category tags the keyword
// engine produces.
type HTTPClassifier struct {
	BaseURL string
	Client  *http.Client
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

func (h HTTPClassifier) ClassifyGrievance(ctx context.Context, text string) (models.Classification, int64, error) {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 15 * time.Second}
	}

	b, _ := json.Marshal(classifyRequest{Text: text})
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/classify", bytes.NewBuffer(b))
	if err != nil {
		return models.Classification{}, 0, err
	}

	req.Header.Set("Content-Type", "application/json")
	resp, err := h.Client.Do(req)
	if err != nil {
		return models.Classification{}, time.Since(start).Milliseconds(), err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Classification{}, time.Since(start).Milliseconds(), errors.New("classifier service error")
	}

	var r classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return models.Classification{}, time.Since(start).Milliseconds(), err
	}

	result := models.Classification{
		Category:   models.Category(r.Category),
		Confidence: r.Confidence,
	}
	return result, time.Since(start).Milliseconds(), nil
}

// Package replicate implements the image oracle against the Replicate
// prediction API with the SDXL model. Generation is slow (10-20s) and
// best-effort; callers treat any failure as "no image".
package replicate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/domain"
)

const (
	// stability-ai/sdxl, version pinned.
	sdxlVersion = "39ed52f2a78e934b3ba6e2a89f5b1c712de7dfea535525255b1aa35c5565e08b"

	pollInterval = 2 * time.Second
)

type predictionInput struct {
	Prompt            string  `json:"prompt"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	NumOutputs        int     `json:"num_outputs"`
	Scheduler         string  `json:"scheduler"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
	NegativePrompt    string  `json:"negative_prompt"`
}

type predictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type prediction struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output"`
	Error  any      `json:"error"`
}

// Client implements ports.ImageOracle.
type Client struct {
	rest    *resty.Client
	timeout time.Duration
	logger  *slog.Logger
}

func NewClient(apiToken, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiToken).
		SetHeader("Content-Type", "application/json")
	return &Client{rest: rest, timeout: timeout, logger: logger}
}

// Generate creates an SDXL prediction and polls until it settles or
// the overall timeout expires. Returns the first output URL.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := predictionRequest{
		Version: sdxlVersion,
		Input: predictionInput{
			Prompt:            prompt,
			Width:             1024,
			Height:            1024,
			NumOutputs:        1,
			Scheduler:         "K_EULER",
			NumInferenceSteps: 25,
			GuidanceScale:     7.5,
			NegativePrompt:    "ugly, blurry, low quality, distorted",
		},
	}

	var pred prediction
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&pred).
		Post("/v1/predictions")
	if err != nil {
		return "", fmt.Errorf("create prediction: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("create prediction: status %d: %s", resp.StatusCode(), resp.String())
	}

	c.logger.DebugContext(ctx, "prediction created", "id", pred.ID)
	return c.poll(ctx, pred)
}

func (c *Client) poll(ctx context.Context, pred prediction) (string, error) {
	for {
		switch pred.Status {
		case "succeeded":
			if len(pred.Output) == 0 || pred.Output[0] == "" {
				return "", domain.ErrNoImage
			}
			return pred.Output[0], nil
		case "failed", "canceled":
			return "", fmt.Errorf("prediction %s: %v: %w", pred.Status, pred.Error, domain.ErrNoImage)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(pollInterval):
		}

		resp, err := c.rest.R().
			SetContext(ctx).
			SetResult(&pred).
			Get("/v1/predictions/" + pred.ID)
		if err != nil {
			return "", fmt.Errorf("poll prediction: %w", err)
		}
		if resp.IsError() {
			return "", fmt.Errorf("poll prediction: status %d: %s", resp.StatusCode(), resp.String())
		}
	}
}

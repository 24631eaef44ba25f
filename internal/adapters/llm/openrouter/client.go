package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Tim-0000/ai-fortune-line-bot/internal/domain"
	"github.com/Tim-0000/ai-fortune-line-bot/internal/ports"
)

// Client implements ports.TextOracle via the OpenRouter API.
type Client struct {
	httpClient     *http.Client
	apiKey         string
	baseURL        string
	model          string
	fallbackModels []string
	logger         *slog.Logger
}

func NewClient(httpClient *http.Client, apiKey, baseURL, model string, fallbackModels []string, logger *slog.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(baseURL, "/"),
		model:          model,
		fallbackModels: fallbackModels,
		logger:         logger,
	}
}

// chatRequest / chatResponse mirror the OpenAI-compatible API shapes.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Generate(ctx context.Context, systemInstruction, userPrompt string) (ports.Fields, error) {
	models := make([]string, 0, 1+len(c.fallbackModels))
	models = append(models, c.model)
	models = append(models, c.fallbackModels...)

	var lastErr error
	for _, model := range models {
		out, err := c.generateWithModel(ctx, systemInstruction, userPrompt, model)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if len(models) > 1 {
			c.logger.WarnContext(ctx, "model failed, trying next", "model", model, "error", err)
		}
	}

	return nil, lastErr
}

func (c *Client) generateWithModel(ctx context.Context, system, user, model string) (ports.Fields, error) {
	content, err := c.callLLM(ctx, model, system, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamLLM, err)
	}

	fields, parseErr := parseFields(content)
	if parseErr != nil {
		c.logger.WarnContext(ctx, "LLM returned invalid JSON, retrying", "model", model, "error", parseErr)
		content, err = c.callLLM(ctx, model, system, retryPrompt(content))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamLLM, err)
		}
		fields, parseErr = parseFields(content)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidLLMJSON, parseErr)
		}
	}

	return fields, nil
}

func (c *Client) callLLM(ctx context.Context, model, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.8,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// parseFields decodes the model output into untyped fields, tolerating
// code fences and prose wrapped around the JSON object.
func parseFields(content string) (ports.Fields, error) {
	var fields ports.Fields
	if err := json.Unmarshal([]byte(extractJSON(content)), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// extractJSON strips anything surrounding the outermost JSON object:
// ```json fences, leading prose, trailing commentary.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return content
	}
	return content[start : end+1]
}

func retryPrompt(badJSON string) string {
	return fmt.Sprintf(`你上一次的回覆不是合法的 JSON，內容如下：
%s

請只回傳修正後的 JSON 物件，不要有任何其他文字，也不要使用 markdown 代碼框。`, badJSON)
}

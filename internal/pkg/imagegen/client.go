package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/qs3c/companion_go_server/config"
)

const defaultBaseURL = "https://api.runpod.ai/v2"

// Client RunPod ComfyUI 图片生成客户端，走同步的 runsync 接口
type Client struct {
	baseURL    string
	endpointID string
	apiKey     string
	httpClient *http.Client
}

type runsyncRequest struct {
	Input runsyncInput `json:"input"`
}

type runsyncInput struct {
	Prompt string `json:"prompt"`
	Lora   string `json:"lora,omitempty"`
}

type runsyncResponse struct {
	Output struct {
		Images []string `json:"images"`
	} `json:"output"`
}

func NewClient(cfg *config.ImageConfig) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		endpointID: cfg.EndpointID,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

// Configured 是否已配置后端，未配置时跳过出图
func (c *Client) Configured() bool {
	return c.endpointID != "" && c.apiKey != ""
}

// GenerateImage 同步生成一张图片，返回图片 URL。
// 未配置后端时返回空串，不算错误。
func (c *Client) GenerateImage(ctx context.Context, prompt, style, loraKey string) (string, error) {
	if !c.Configured() {
		return "", nil
	}

	url := fmt.Sprintf("%s/%s/runsync", c.baseURL, c.endpointID)

	payload := runsyncRequest{
		Input: runsyncInput{
			Prompt: fmt.Sprintf("%s style, %s, masterpiece, best quality", style, prompt),
			Lora:   loraKey,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image gen request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image gen returned status %d", resp.StatusCode)
	}

	var result runsyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Output.Images) == 0 {
		return "", fmt.Errorf("image gen returned no images")
	}

	return result.Output.Images[0], nil
}

package worker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/qs3c/companion_go_server/internal/pkg/oss"
)

// 单张图片的下载上限，生成侧的输出不会超过这个量级
const maxImageBytes = 20 << 20

// Rehoster 把生成侧返回的临时图片转存到自己的 OSS。
// 生成侧的 URL 有效期短，转存后才能长期展示。
type Rehoster struct {
	ossClient  *oss.Client
	httpClient *http.Client
}

func NewRehoster(ossClient *oss.Client) *Rehoster {
	return &Rehoster{
		ossClient:  ossClient,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Rehost 下载并重新上传一张图片，返回 OSS 侧 URL
func (r *Rehoster) Rehost(ctx context.Context, userID, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read image body: %w", err)
	}

	return r.ossClient.UploadImage(userID, data, imageExt(imageURL))
}

// imageExt 从 URL 推断扩展名，推断不出来按 png 处理
func imageExt(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ".png"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	}
	return ".png"
}

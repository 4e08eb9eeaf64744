package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/qs3c/companion_go_server/internal/model"
	"github.com/qs3c/companion_go_server/internal/pkg/queue"
	"github.com/qs3c/companion_go_server/internal/repository"
	"github.com/qs3c/companion_go_server/internal/service"
)

// ImageGenerator 图片生成后端
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, style, loraKey string) (string, error)
}

// Processor 图片任务处理器
type Processor struct {
	jobRepo      *repository.ImageJobRepository
	userService  *service.UserService
	quotaService *service.QuotaService
	generator    ImageGenerator
	rehoster     *Rehoster
	transport    service.Transport
}

// NewProcessor 创建任务处理器，rehoster 可以为 nil（OSS 未配置时直接下发原始 URL）
func NewProcessor(
	jobRepo *repository.ImageJobRepository,
	userService *service.UserService,
	quotaService *service.QuotaService,
	generator ImageGenerator,
	rehoster *Rehoster,
	transport service.Transport,
) *Processor {
	return &Processor{
		jobRepo:      jobRepo,
		userService:  userService,
		quotaService: quotaService,
		generator:    generator,
		rehoster:     rehoster,
		transport:    transport,
	}
}

// Process 处理一个图片任务。
// 入队和执行之间可能隔了很久，配额在这里重新判定，而不是沿用入队时的判定。
func (p *Processor) Process(ctx context.Context, msg *queue.ImageJobMessage) error {
	job, err := p.jobRepo.GetByID(msg.JobID)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}

	now := time.Now()
	job.Status = model.ImageJobStatusProcessing
	job.StartedAt = &now
	if err := p.jobRepo.Update(job); err != nil {
		log.Printf("Job %d: failed to mark processing: %v", job.ID, err)
	}

	handleError := func(err error) error {
		job.Status = model.ImageJobStatusFailed
		job.ErrorMessage = err.Error()
		completedAt := time.Now()
		job.CompletedAt = &completedAt
		if updateErr := p.jobRepo.Update(job); updateErr != nil {
			log.Printf("Job %d: failed to record failure: %v", job.ID, updateErr)
		}
		return err
	}

	finish := func(status string) {
		job.Status = status
		completedAt := time.Now()
		job.CompletedAt = &completedAt
		if err := p.jobRepo.Update(job); err != nil {
			log.Printf("Job %d: failed to record status %s: %v", job.ID, status, err)
		}
	}

	// 重新检查配额，GetOrCreate 顺带做惰性重置
	user, err := p.userService.GetOrCreate(msg.UserID, "", "")
	if err != nil {
		return handleError(fmt.Errorf("failed to load user: %w", err))
	}
	if !p.quotaService.CanGenerateImage(user) {
		log.Printf("Job %d: image quota exhausted for user %s, skipping", job.ID, msg.UserID)
		finish(model.ImageJobStatusSkipped)
		return nil
	}

	log.Printf("Job %d: generating image for user %s (style=%s)", job.ID, msg.UserID, msg.Style)

	imageURL, err := p.generator.GenerateImage(ctx, msg.Prompt, msg.Style, msg.LoraKey)
	if err != nil {
		return handleError(fmt.Errorf("image generation failed: %w", err))
	}
	if imageURL == "" {
		// 后端未配置，静默跳过
		log.Printf("Job %d: image backend not configured, skipping", job.ID)
		finish(model.ImageJobStatusSkipped)
		return nil
	}

	// 转存到 OSS，失败时退回原始 URL
	if p.rehoster != nil {
		rehosted, err := p.rehoster.Rehost(ctx, msg.UserID, imageURL)
		if err != nil {
			log.Printf("Job %d: rehost failed, using original URL: %v", job.ID, err)
		} else {
			imageURL = rehosted
		}
	}

	if err := p.transport.SendImage(ctx, msg.ChatID, imageURL); err != nil {
		return handleError(fmt.Errorf("failed to deliver image: %w", err))
	}

	if err := p.userService.IncrementImageCount(msg.UserID); err != nil {
		log.Printf("Job %d: failed to increment image count: %v", job.ID, err)
	}

	job.ImageURL = imageURL
	finish(model.ImageJobStatusDone)

	log.Printf("Job %d: done", job.ID)
	return nil
}

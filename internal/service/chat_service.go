package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/qs3c/companion_go_server/internal/model"
	"github.com/qs3c/companion_go_server/internal/model/dto"
	"github.com/qs3c/companion_go_server/internal/pkg/queue"
	"github.com/qs3c/companion_go_server/internal/repository"
)

// 发给用户的固定文案
const (
	ReplySelectCharacterFirst = "Please select a character first with /start"
	ReplyDailyLimitReached    = "Daily limit reached! 💎 You need more energy to continue."
	ReplyFallback             = "I'm having a little trouble thinking right now, darling..."
	ReplyTryAgain             = "Something went wrong, please try again."
)

var ErrSessionCorrupted = errors.New("会话数据损坏")

// ChatService 消息回合编排。
// 同一用户的回合串行执行，不同用户互不阻塞。
type ChatService struct {
	userService    *UserService
	sessionService *SessionService
	quotaService   *QuotaService
	imageJobRepo   *repository.ImageJobRepository
	imageQueue     *queue.Queue
	generator      TextGenerator
	transport      Transport

	userLocks sync.Map // userID -> *sync.Mutex
}

func NewChatService(
	userService *UserService,
	sessionService *SessionService,
	quotaService *QuotaService,
	imageJobRepo *repository.ImageJobRepository,
	imageQueue *queue.Queue,
	generator TextGenerator,
	transport Transport,
) *ChatService {
	return &ChatService{
		userService:    userService,
		sessionService: sessionService,
		quotaService:   quotaService,
		imageJobRepo:   imageJobRepo,
		imageQueue:     imageQueue,
		generator:      generator,
		transport:      transport,
	}
}

func (s *ChatService) lockUser(userID string) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// HandleMessage 处理一条用户消息的完整回合：
// 前置检查（会话、配额）→ 记录用户消息 → 生成回复 → 记录并下发回复 →
// 计数，并在达到阈值时投递图片任务。
// 文本回复永远先于图片送达，图片生成不阻塞回合。
func (s *ChatService) HandleMessage(ctx context.Context, userID, username, firstName, text string) error {
	mu := s.lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	user, err := s.userService.GetOrCreate(userID, username, firstName)
	if err != nil {
		return err
	}

	session, err := s.sessionService.GetActive(userID)
	if err != nil {
		return err
	}
	if session == nil {
		return s.transport.SendText(ctx, userID, ReplySelectCharacterFirst)
	}

	// 配额检查，拒绝时附带升级入口
	if !s.quotaService.CanSendMessage(user) {
		return s.transport.SendOptions(ctx, userID, ReplyDailyLimitReached, []Option{
			{Label: "💎 Upgrade Now", Action: dto.ActionMenuPremium},
		})
	}

	character := session.Character
	if character == nil {
		return ErrSessionCorrupted
	}

	// 先落库用户消息，生成失败也要留痕
	history, err := s.sessionService.AppendTurn(userID, model.RoleUser, text)
	if err != nil {
		return err
	}

	systemInstruction := character.SystemPrompt +
		". Current Style: " + session.CurrentStyle +
		". IMPORTANT: Keep your reply SHORT (under 2 sentences). " +
		"Be seductive, flirty, and use emojis like 😘, 😉, 🔥."

	responseText, err := s.generator.Generate(ctx, systemInstruction, history)
	if err != nil {
		// 降级为固定文案，回合继续
		log.Printf("HandleMessage: generate failed for user %s: %v", userID, err)
		responseText = ReplyFallback
	}

	if _, err := s.sessionService.AppendTurn(userID, model.RoleAssistant, responseText); err != nil {
		return err
	}

	if err := s.transport.SendText(ctx, userID, responseText); err != nil {
		return err
	}

	if err := s.userService.IncrementMessageCount(userID); err != nil {
		return err
	}

	// 图片触发：每 3 条用户消息一次，无论这次是否真的出图，计数都归零
	counter := session.MsgCounter + 1
	if counter >= ImageTriggerTurns {
		counter = 0
		if s.quotaService.CanGenerateImage(user) {
			s.enqueueImageJob(ctx, user, session, character, responseText)
		}
	}

	return s.sessionService.SetMsgCounter(userID, counter)
}

// enqueueImageJob 创建图片任务记录并入队，失败只记日志，不影响回合
func (s *ChatService) enqueueImageJob(ctx context.Context, user *model.User, session *model.Session, character *model.Character, prompt string) {
	job := &model.ImageJob{
		UserID:      user.ID,
		CharacterID: character.ID,
		Prompt:      prompt,
		Style:       session.CurrentStyle,
		LoraKey:     character.ImageLoraKey,
		Status:      model.ImageJobStatusQueued,
	}
	if err := s.imageJobRepo.Create(job); err != nil {
		log.Printf("enqueueImageJob: create job record failed for user %s: %v", user.ID, err)
		return
	}

	msg := &queue.ImageJobMessage{
		JobID:       job.ID,
		UserID:      user.ID,
		ChatID:      user.ID,
		CharacterID: character.ID,
		Prompt:      prompt,
		Style:       session.CurrentStyle,
		LoraKey:     character.ImageLoraKey,
	}
	if err := s.imageQueue.Push(ctx, msg); err != nil {
		log.Printf("enqueueImageJob: push failed for job %d: %v", job.ID, err)
	}
}

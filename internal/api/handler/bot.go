package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/companion_go_server/internal/model"
	"github.com/qs3c/companion_go_server/internal/model/dto"
	"github.com/qs3c/companion_go_server/internal/pkg/response"
	"github.com/qs3c/companion_go_server/internal/service"
)

type actionFunc func(ctx context.Context, user *model.User) error
type prefixActionFunc func(ctx context.Context, user *model.User, arg string) error

type prefixRoute struct {
	prefix string
	fn     prefixActionFunc
}

// BotHandler 入站会话事件分发：命令、普通消息、按钮回调
type BotHandler struct {
	userService       *service.UserService
	sessionService    *service.SessionService
	checkpointService *service.CheckpointService
	chatService       *service.ChatService
	transport         service.Transport
	paymentLink       string

	exactRoutes  map[string]actionFunc
	prefixRoutes []prefixRoute
}

func NewBotHandler(
	userService *service.UserService,
	sessionService *service.SessionService,
	checkpointService *service.CheckpointService,
	chatService *service.ChatService,
	transport service.Transport,
	paymentLink string,
) *BotHandler {
	h := &BotHandler{
		userService:       userService,
		sessionService:    sessionService,
		checkpointService: checkpointService,
		chatService:       chatService,
		transport:         transport,
		paymentLink:       paymentLink,
	}

	// 回调路由表，先精确匹配再前缀匹配
	h.exactRoutes = map[string]actionFunc{
		dto.ActionMenuChars:       h.showCharacterMenu,
		dto.ActionMenuCheckpoints: h.showCheckpointMenu,
		dto.ActionMenuPremium:     h.showPremiumMenu,
	}
	h.prefixRoutes = []prefixRoute{
		{dto.ActionSelectCharPfx, h.selectCharacter},
		{dto.ActionRestorePfx, h.restoreCheckpoint},
	}

	return h
}

// HandleUpdate 处理网关转发的入站事件
// POST /api/v1/bot/update
func (h *BotHandler) HandleUpdate(c *gin.Context) {
	var update dto.BotUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.ParamError(c, "")
		return
	}

	ctx := c.Request.Context()

	user, err := h.userService.GetOrCreate(update.User.ID, update.User.Username, update.User.FirstName)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	switch {
	case update.Callback != nil:
		h.handleCallback(c, ctx, user, update.Callback)
	case update.Message != nil:
		h.handleMessage(c, ctx, user, update.Message.Text)
	default:
		response.ParamError(c, "message 或 callback 必须提供其一")
	}
}

func (h *BotHandler) handleMessage(c *gin.Context, ctx context.Context, user *model.User, text string) {
	switch {
	case text == "/start":
		if err := h.sendRootMenu(ctx, user); err != nil {
			response.ServerError(c, "")
			return
		}
	case text == "/checkpoint":
		h.createCheckpoint(c, ctx, user)
		return
	default:
		if err := h.chatService.HandleMessage(ctx, user.ID, user.Username, user.FirstName, text); err != nil {
			log.Printf("HandleUpdate: turn failed for user %s: %v", user.ID, err)
			h.transport.SendText(ctx, user.ID, service.ReplyTryAgain)
			response.ServerError(c, "")
			return
		}
	}

	response.Success(c, nil)
}

func (h *BotHandler) handleCallback(c *gin.Context, ctx context.Context, user *model.User, callback *dto.BotCallback) {
	// 先应答，按钮不能一直转圈
	if callback.Token != "" {
		if err := h.transport.AckCallback(ctx, callback.Token); err != nil {
			log.Printf("HandleUpdate: ack failed for user %s: %v", user.ID, err)
		}
	}

	if fn, ok := h.exactRoutes[callback.Action]; ok {
		if err := fn(ctx, user); err != nil {
			response.ServerError(c, "")
			return
		}
		response.Success(c, nil)
		return
	}

	for _, route := range h.prefixRoutes {
		if strings.HasPrefix(callback.Action, route.prefix) {
			arg := strings.TrimPrefix(callback.Action, route.prefix)
			if err := route.fn(ctx, user, arg); err != nil {
				response.ServerError(c, "")
				return
			}
			response.Success(c, nil)
			return
		}
	}

	// 未知动作只应答不处理，旧客户端的按钮可能还在
	log.Printf("HandleUpdate: unknown callback action %q from user %s", callback.Action, user.ID)
	response.Success(c, nil)
}

func (h *BotHandler) sendRootMenu(ctx context.Context, user *model.User) error {
	greeting := fmt.Sprintf("Hi %s! I'm your AI companion. Choose a character to start!", user.FirstName)
	return h.transport.SendOptions(ctx, user.ID, greeting, []service.Option{
		{Label: "Choose Character 👩", Action: dto.ActionMenuChars},
		{Label: "My Checkpoints 💾", Action: dto.ActionMenuCheckpoints},
		{Label: "Upgrade to Premium 💎", Action: dto.ActionMenuPremium},
	})
}

func (h *BotHandler) createCheckpoint(c *gin.Context, ctx context.Context, user *model.User) {
	checkpoint, err := h.checkpointService.Create(user.ID)
	if errors.Is(err, service.ErrNoActiveSession) {
		h.transport.SendText(ctx, user.ID, "No active chat to save.")
		response.NoSessionError(c, "")
		return
	}
	if err != nil {
		response.ServerError(c, "")
		return
	}

	if err := h.transport.SendText(ctx, user.ID, "✅ Game Saved: "+checkpoint.CheckpointName); err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, checkpoint)
}

func (h *BotHandler) showCharacterMenu(ctx context.Context, user *model.User) error {
	characters, err := h.sessionService.ListCharacters()
	if err != nil {
		return err
	}

	options := make([]service.Option, 0, len(characters))
	for _, character := range characters {
		mark := "✨"
		if !character.IsFree && !user.IsPremium {
			mark = "🔒"
		}
		options = append(options, service.Option{
			Label:  fmt.Sprintf("%s %s", character.Name, mark),
			Action: dto.ActionSelectCharPfx + strconv.FormatInt(character.ID, 10),
		})
	}

	return h.transport.SendOptions(ctx, user.ID, "Pick your date for tonight: 😘", options)
}

func (h *BotHandler) selectCharacter(ctx context.Context, user *model.User, arg string) error {
	characterID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return h.transport.SendText(ctx, user.ID, "Hmm, I don't know that character.")
	}

	character, err := h.sessionService.SelectCharacter(user, characterID)
	if errors.Is(err, service.ErrCharacterLocked) {
		return h.transport.SendText(ctx, user.ID, "🔒 That character is for Premium users only! Upgrade to chat with her.")
	}
	if errors.Is(err, service.ErrCharacterNotFound) {
		return h.transport.SendText(ctx, user.ID, "Hmm, I don't know that character.")
	}
	if err != nil {
		return err
	}

	return h.transport.SendText(ctx, user.ID, fmt.Sprintf("I'm ready for you... say hello to %s. 😉", character.Name))
}

func (h *BotHandler) showCheckpointMenu(ctx context.Context, user *model.User) error {
	checkpoints, err := h.checkpointService.List(user.ID)
	if err != nil {
		return err
	}

	if len(checkpoints) == 0 {
		return h.transport.SendText(ctx, user.ID, "🚫 No saved games found.\nUse /checkpoint while chatting to save!")
	}

	options := make([]service.Option, 0, len(checkpoints))
	for _, checkpoint := range checkpoints {
		options = append(options, service.Option{
			Label:  fmt.Sprintf("📂 %s (%s)", checkpoint.CheckpointName, checkpoint.CurrentStyle),
			Action: dto.ActionRestorePfx + checkpoint.ID,
		})
	}

	return h.transport.SendOptions(ctx, user.ID, "Select a save file to load:", options)
}

func (h *BotHandler) restoreCheckpoint(ctx context.Context, user *model.User, arg string) error {
	checkpoint, err := h.checkpointService.Restore(user.ID, arg)
	if errors.Is(err, service.ErrCheckpointNotFound) {
		return h.transport.SendText(ctx, user.ID, "🚫 Save file not found.")
	}
	if err != nil {
		return err
	}

	return h.transport.SendText(ctx, user.ID,
		fmt.Sprintf("✅ Memory Loaded: %s\nContinue where you left off!", checkpoint.CheckpointName))
}

func (h *BotHandler) showPremiumMenu(ctx context.Context, user *model.User) error {
	text := "💎 Premium Access\n\n" +
		"🔥 Unlimited Messages\n" +
		"📸 Unlimited Photos\n" +
		"🔓 Unlock premium characters\n\n" +
		"Click below to upgrade:"

	return h.transport.SendOptions(ctx, user.ID, text, []service.Option{
		{Label: "💳 Click to Pay $9.99", URL: h.paymentLink},
	})
}

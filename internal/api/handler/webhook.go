package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/companion_go_server/internal/pkg/payment"
	"github.com/qs3c/companion_go_server/internal/service"
)

// 回调体上限，Stripe 事件远小于这个值
const maxWebhookBody = 1 << 20

// WebhookHandler 支付回调
type WebhookHandler struct {
	verifier    *payment.Verifier
	userService *service.UserService
}

func NewWebhookHandler(verifier *payment.Verifier, userService *service.UserService) *WebhookHandler {
	return &WebhookHandler{
		verifier:    verifier,
		userService: userService,
	}
}

// HandleStripe 处理 Stripe webhook
// POST /api/v1/payment/webhook
// 验签失败返回 400，其余情况一律 200，避免 Stripe 无意义重试。
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	event, err := h.verifier.ConstructEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if event.Type != payment.EventCheckoutCompleted {
		// 其他事件类型确认收到即可
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	session, err := event.CheckoutSession()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed checkout session"})
		return
	}

	userID := session.Metadata["user_id"]
	if userID == "" {
		log.Printf("HandleStripe: event %s has no user_id metadata, ignoring", event.ID)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err := h.userService.GrantPremium(userID); err != nil {
		// 已确认的付款不能丢，500 让 Stripe 重试
		log.Printf("HandleStripe: grant premium failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/companion_go_server/internal/pkg/response"
	"github.com/qs3c/companion_go_server/internal/service"
)

type QuotaHandler struct {
	userService *service.UserService
}

func NewQuotaHandler(userService *service.UserService) *QuotaHandler {
	return &QuotaHandler{
		userService: userService,
	}
}

// GetQuota 获取用户配额信息
// GET /api/v1/users/:id/quota
func (h *QuotaHandler) GetQuota(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		response.ParamError(c, "")
		return
	}

	info, err := h.userService.GetQuotaInfo(userID)
	if errors.Is(err, service.ErrUserNotFound) {
		response.NotFoundError(c, service.ErrUserNotFound.Error())
		return
	}
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, info)
}

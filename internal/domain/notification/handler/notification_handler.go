package handler

import (
	"anonboard/internal/domain/notification/model"
	"anonboard/internal/domain/notification/service"
	"anonboard/internal/pkg/middleware"
	"anonboard/pkg/response"
	"anonboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// List 我的通知
// @Summary 通知列表
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)
	offset, limit := p.GetPageOffset()

	list, total, err := h.service.List(c.Request.Context(), middleware.GetUserID(c), offset, limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	response.Success(c, utils.NewPageResult(list, total, p))
}

// UnreadCount 未读数
// @Summary 未读通知数
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.service.UnreadCount(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"count": n})
}

// MarkRead 标记已读
// @Summary 标记已读
// @Tags Notification
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Response
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "success")
}

// MarkAllRead 全部标记已读
// @Summary 全部标记已读
// @Tags Notification
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.service.MarkAllRead(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": n})
}

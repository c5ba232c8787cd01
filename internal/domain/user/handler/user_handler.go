package handler

import (
	"anonboard/internal/domain/user/model"
	"anonboard/internal/domain/user/service"
	"anonboard/internal/pkg/middleware"
	"anonboard/pkg/response"
	"anonboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.IdentityService
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.IdentityService) *UserHandler {
	return &UserHandler{service: service}
}

// GuestInput 游客注册输入
type GuestInput struct {
	Avatar string `json:"avatar" binding:"omitempty,max=64"`
}

// BanInput 封禁输入，durationDays 为 0 表示永久
type BanInput struct {
	Reason       string `json:"reason" binding:"required,max=500"`
	DurationDays int    `json:"durationDays" binding:"min=0,max=3650"`
}

// GuestLogin 创建匿名账号并签发 token
// @Summary 匿名注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body GuestInput false "头像"
// @Success 200 {object} response.Response
// @Router /auth/guest [post]
func (h *UserHandler) GuestLogin(c *gin.Context) {
	var input GuestInput
	_ = c.ShouldBindJSON(&input)

	user, err := h.service.RegisterGuest(c.Request.Context(), input.Avatar)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	token, expireAt, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token, "expireAt": expireAt, "user": user})
}

// Me 当前用户信息
// @Summary 当前用户
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=model.Requestor}
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	r, err := h.service.ResolveRequestor(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, r)
}

// ListUsers 用户列表（管理员）
// @Summary 用户列表
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)
	offset, limit := p.GetPageOffset()

	users, total, err := h.service.ListUsers(c.Request.Context(), offset, limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	response.Success(c, utils.NewPageResult(users, total, p))
}

// BanUser 封禁用户（管理员）
// @Summary 封禁用户
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param input body BanInput true "封禁原因与天数"
// @Success 200 {object} response.Response
// @Router /admin/users/{id}/ban [post]
func (h *UserHandler) BanUser(c *gin.Context) {
	var input BanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	err := h.service.Ban(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), input.Reason, input.DurationDays)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "success")
}

// UnbanUser 解除封禁（管理员）
// @Summary 解除封禁
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Router /admin/users/{id}/unban [post]
func (h *UserHandler) UnbanUser(c *gin.Context) {
	if err := h.service.Unban(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "success")
}

// UserTypeInput 用户类型输入
type UserTypeInput struct {
	UserType model.UserType `json:"userType" binding:"required,oneof=FREE PREMIUM"`
}

// PromoteUser 提升为管理员（管理员）
// @Summary 提升为管理员
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "被封禁用户不能提升"
// @Router /admin/users/{id}/promote [post]
func (h *UserHandler) PromoteUser(c *gin.Context) {
	if err := h.service.PromoteToAdmin(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "success")
}

// UpdateUserType 修改用户类型（管理员）
// @Summary 修改用户类型
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param input body UserTypeInput true "FREE 或 PREMIUM"
// @Success 200 {object} response.Response
// @Router /admin/users/{id}/type [put]
func (h *UserHandler) UpdateUserType(c *gin.Context) {
	var input UserTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}
	if err := h.service.UpdateUserType(c.Request.Context(), c.Param("id"), input.UserType); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "success")
}

package handler

import (
	"anonboard/internal/domain/comment/service"
	"anonboard/internal/pkg/middleware"
	"anonboard/pkg/response"
	"anonboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service service.CommentService
}

func NewCommentHandler(s service.CommentService) *CommentHandler {
	return &CommentHandler{service: s}
}

// CreateCommentInput 评论输入，ParentID 非空时为回复
type CreateCommentInput struct {
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parentId"`
}

// EditCommentInput 编辑输入
type EditCommentInput struct {
	Content string `json:"content" binding:"required"`
}

// ListQuery 评论列表参数
type ListQuery struct {
	utils.Pagination
	Sort string `form:"sort"`
}

// CreateComment 发表评论或回复
// @Summary 发表评论
// @Tags Comment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param input body CreateCommentInput true "评论内容"
// @Success 200 {object} response.Response{data=model.CommentResponse}
// @Router /posts/{id}/comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var input CreateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}
	comment, err := h.service.CreateComment(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), input.Content, input.ParentID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, comment)
}

// ListComments 帖子的一级评论
// @Summary 评论列表
// @Tags Comment
// @Produce json
// @Param id path string true "Post ID"
// @Param sort query string false "latest | top"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /posts/{id}/comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	var q ListQuery
	_ = c.ShouldBindQuery(&q)
	offset, limit := q.GetPageOffset()

	list, total, err := h.service.ListComments(c.Request.Context(), c.Param("id"), q.Sort, offset, limit, middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, q.Pagination))
}

// ListReplies 评论的回复
// @Summary 回复列表
// @Tags Comment
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} response.Response{data=[]model.CommentResponse}
// @Router /comments/{id}/replies [get]
func (h *CommentHandler) ListReplies(c *gin.Context) {
	replies, err := h.service.ListReplies(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, replies)
}

// EditComment 编辑评论
// @Summary 编辑评论
// @Tags Comment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param input body EditCommentInput true "内容"
// @Success 200 {object} response.Response{data=model.CommentResponse}
// @Router /comments/{id} [put]
func (h *CommentHandler) EditComment(c *gin.Context) {
	var input EditCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}
	comment, err := h.service.EditComment(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), input.Content)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, comment)
}

// DeleteComment 删除自己的评论
// @Summary 删除评论
// @Tags Comment
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} response.Response
// @Router /comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	if err := h.service.DeleteComment(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "success")
}

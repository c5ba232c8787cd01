package handler

import (
	"io"
	"strings"

	"anonboard/internal/domain/post/model"
	"anonboard/internal/domain/post/service"
	"anonboard/internal/pkg/middleware"
	"anonboard/internal/pkg/uploader"
	"anonboard/pkg/errs"
	"anonboard/pkg/response"
	"anonboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	service service.PostService
}

func NewPostHandler(s service.PostService) *PostHandler {
	return &PostHandler{service: s}
}

// CreatePostInput 发帖输入，multipart 时 tags 可重复或用逗号分隔
type CreatePostInput struct {
	Title   string   `json:"title" form:"title" binding:"required"`
	Content string   `json:"content" form:"content" binding:"required"`
	Tags    []string `json:"tags" form:"tags"`
}

// EditPostInput 编辑输入
type EditPostInput struct {
	Content string `json:"content" binding:"required"`
}

// ListQuery 列表查询参数
type ListQuery struct {
	utils.Pagination
	Tag  string `form:"tag"`
	Sort string `form:"sort"`
}

// CreatePost 发帖
// @Summary 发帖
// @Tags Post
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param input body CreatePostInput true "帖子内容"
// @Success 200 {object} response.Response{data=model.PostResponse}
// @Router /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input CreatePostInput
	var image *service.Image

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&input); err != nil {
			response.BadRequest(c, err)
			return
		}
		img, err := readImage(c)
		if err != nil {
			response.HandleError(c, err)
			return
		}
		image = img
		input.Tags = splitTags(input.Tags)
	} else if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), middleware.GetUserID(c), service.CreatePostInput{
		Title:   input.Title,
		Content: input.Content,
		Tags:    input.Tags,
		Image:   image,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, post)
}

// readImage 读取可选的 image 字段
func readImage(c *gin.Context) (*service.Image, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}
	if fh.Size > uploader.MaxImageSize {
		return nil, errs.InvalidArgument("image too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, uploader.MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	return &service.Image{Data: data, ContentType: fh.Header.Get("Content-Type")}, nil
}

func splitTags(raw []string) []string {
	var out []string
	for _, t := range raw {
		out = append(out, strings.Split(t, ",")...)
	}
	return out
}

// GetPost 帖子详情，登录用户首次查看计入浏览数
// @Summary 帖子详情
// @Tags Post
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response{data=model.PostResponse}
// @Router /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.service.GetPost(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, post)
}

// ListPosts 帖子列表
// @Summary 帖子列表
// @Tags Post
// @Produce json
// @Param tag query string false "Tag"
// @Param sort query string false "latest | trending"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	var q ListQuery
	_ = c.ShouldBindQuery(&q)
	h.list(c, model.ListQuery{Tag: q.Tag, Sort: q.Sort}, q.Pagination)
}

// SearchPosts 搜索
// @Summary 搜索帖子
// @Tags Post
// @Produce json
// @Param q query string true "关键字"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /posts/search [get]
func (h *PostHandler) SearchPosts(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("q"))
	if keyword == "" {
		response.HandleError(c, errs.InvalidArgument("q is required"))
		return
	}
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)
	h.list(c, model.ListQuery{Keyword: keyword}, p)
}

// MyPosts 我的帖子
// @Summary 我的帖子
// @Tags Post
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /posts/mine [get]
func (h *PostHandler) MyPosts(c *gin.Context) {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)
	h.list(c, model.ListQuery{AuthorID: middleware.GetUserID(c)}, p)
}

func (h *PostHandler) list(c *gin.Context, q model.ListQuery, p utils.Pagination) {
	offset, limit := p.GetPageOffset()
	posts, total, err := h.service.ListPosts(c.Request.Context(), q, offset, limit, middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(posts, total, p))
}

// SharePost 分享计数
// @Summary 分享
// @Tags Post
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Router /posts/{id}/share [post]
func (h *PostHandler) SharePost(c *gin.Context) {
	if err := h.service.SharePost(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "success")
}

// EditPost 编辑帖子（仅作者，发布后 10 分钟内）
// @Summary 编辑帖子
// @Tags Post
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param input body EditPostInput true "正文"
// @Success 200 {object} response.Response{data=model.PostResponse}
// @Router /posts/{id} [put]
func (h *PostHandler) EditPost(c *gin.Context) {
	var input EditPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}
	post, err := h.service.EditPost(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), input.Content)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost 删除自己的帖子
// @Summary 删除帖子
// @Tags Post
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Router /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.service.DeletePost(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "success")
}

package handler

import (
	"anonboard/internal/domain/moderation/service"
	reportmodel "anonboard/internal/domain/report/model"
	reportservice "anonboard/internal/domain/report/service"
	"anonboard/internal/pkg/middleware"
	"anonboard/pkg/response"
	"anonboard/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	service service.ModerationService
	reports reportservice.ReportRegistry
}

func NewModerationHandler(s service.ModerationService, r reportservice.ReportRegistry) *ModerationHandler {
	return &ModerationHandler{service: s, reports: r}
}

// ResolveReportInput 处理举报输入，status 只能是 reviewed、resolved 或 dismissed
type ResolveReportInput struct {
	Status reportmodel.Status `json:"status" binding:"required" enums:"reviewed,resolved,dismissed"`
	Notes  string             `json:"notes"`
}

// ReportQuery 举报列表参数
type ReportQuery struct {
	utils.Pagination
	Status string `form:"status"`
}

// RemovePost 管理员删除帖子
// @Summary 删除帖子（管理员）
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} response.Response
// @Router /admin/posts/{id} [delete]
func (h *ModerationHandler) RemovePost(c *gin.Context) {
	h.remove(c, reportmodel.TargetPost)
}

// RemoveComment 管理员删除评论
// @Summary 删除评论（管理员）
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} response.Response
// @Router /admin/comments/{id} [delete]
func (h *ModerationHandler) RemoveComment(c *gin.Context) {
	h.remove(c, reportmodel.TargetComment)
}

func (h *ModerationHandler) remove(c *gin.Context, targetType string) {
	if err := h.service.RemoveContent(c.Request.Context(), targetType, c.Param("id"), middleware.GetUserID(c)); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "success")
}

// Stats 概览数据
// @Summary 后台概览
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=repository.Stats}
// @Router /admin/stats [get]
func (h *ModerationHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, stats)
}

// ListReports 举报列表，可按状态过滤
// @Summary 举报列表
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending | reviewed | resolved | dismissed"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /admin/reports [get]
func (h *ModerationHandler) ListReports(c *gin.Context) {
	var q ReportQuery
	_ = c.ShouldBindQuery(&q)
	offset, limit := q.GetPageOffset()

	list, total, err := h.reports.List(c.Request.Context(), reportmodel.Status(q.Status), offset, limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, q.Pagination))
}

// PendingCount 待处理举报数
// @Summary 待处理举报数
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/reports/pending-count [get]
func (h *ModerationHandler) PendingCount(c *gin.Context) {
	n, err := h.reports.CountPending(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"count": n})
}

// ResolveReport 处理单条举报
// @Summary 处理举报
// @Description 将举报标记为 reviewed、resolved 或 dismissed；不能改回 pending，传 pending 返回 400
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param input body ResolveReportInput true "处理结果"
// @Success 200 {object} response.Response{data=reportmodel.Report}
// @Failure 400 {object} response.Response "status 为 pending 或未知值"
// @Failure 404 {object} response.Response
// @Router /admin/reports/{id} [put]
func (h *ModerationHandler) ResolveReport(c *gin.Context) {
	var input ResolveReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}
	report, err := h.reports.ResolveOne(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), input.Notes, input.Status)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, report)
}

package handler

import (
	"anonboard/internal/domain/report/model"
	"anonboard/internal/domain/report/service"
	"anonboard/internal/pkg/middleware"
	"anonboard/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	registry service.ReportRegistry
}

func NewReportHandler(r service.ReportRegistry) *ReportHandler {
	return &ReportHandler{registry: r}
}

// SubmitReportInput 举报输入
type SubmitReportInput struct {
	TargetType  string       `json:"targetType" binding:"required,oneof=POST COMMENT"`
	TargetID    string       `json:"targetId" binding:"required"`
	Reason      model.Reason `json:"reason" binding:"required"`
	Description string       `json:"description"`
}

// SubmitReport 举报帖子或评论
// @Summary 举报
// @Tags Report
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body SubmitReportInput true "举报内容"
// @Success 200 {object} response.Response{data=model.Report}
// @Router /reports [post]
func (h *ReportHandler) SubmitReport(c *gin.Context) {
	var input SubmitReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}
	report, err := h.registry.Submit(c.Request.Context(), middleware.GetUserID(c), service.SubmitInput{
		TargetType:  input.TargetType,
		TargetID:    input.TargetID,
		Reason:      input.Reason,
		Description: input.Description,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, report)
}

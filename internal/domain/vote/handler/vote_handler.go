package handler

import (
	"anonboard/internal/domain/vote/service"
	"anonboard/internal/pkg/middleware"
	"anonboard/pkg/response"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	ledger service.VoteLedger
}

func NewVoteHandler(l service.VoteLedger) *VoteHandler {
	return &VoteHandler{ledger: l}
}

// VoteInput 投票取值 1 或 -1
type VoteInput struct {
	Value int `json:"value" binding:"required"`
}

// Vote 对评论投票，重复相同取值即撤销
// @Summary 评论投票
// @Tags Vote
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param input body VoteInput true "取值"
// @Success 200 {object} response.Response{data=model.Result}
// @Router /comments/{id}/vote [post]
func (h *VoteHandler) Vote(c *gin.Context) {
	var input VoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}
	result, err := h.ledger.Vote(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), input.Value)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// Unvote 撤销投票，没有投票时也返回成功
// @Summary 撤销投票
// @Tags Vote
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} response.Response
// @Router /comments/{id}/vote [delete]
func (h *VoteHandler) Unvote(c *gin.Context) {
	if err := h.ledger.Unvote(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "success")
}

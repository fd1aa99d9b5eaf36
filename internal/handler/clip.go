package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge/internal/dto"
	"clipforge/internal/response"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

func (h Handler) UpdateClip(c *gin.Context) {
	clipId := c.Param("clipId")

	var req dto.UpdateClipReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("UpdateClip ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	data, err := h.Service.UpdateClip(clipId, req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) DeleteClip(c *gin.Context) {
	clipId := c.Param("clipId")
	if clipId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	data, err := h.Service.RemoveClip(clipId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) MoveClip(c *gin.Context) {
	clipId := c.Param("clipId")

	var req dto.MoveClipReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	data, err := h.Service.MoveClip(clipId, req.Direction)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) ReportPlayhead(c *gin.Context) {
	clipId := c.Param("clipId")

	var req dto.PlayheadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	if err := h.Service.ReportPlayhead(clipId, req.Seconds); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}

func (h Handler) SetBoundary(c *gin.Context) {
	clipId := c.Param("clipId")

	var req dto.BoundaryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	data, err := h.Service.SetBoundaryFromPlayhead(clipId, req.Edge)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/dto"
	"clipforge/internal/queue"
	"clipforge/internal/response"
	"clipforge/internal/taskrunner"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

func (h Handler) CreateSession(c *gin.Context) {
	data, err := h.Service.CreateSession()
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GetSession(c *gin.Context) {
	sessionId := c.Param("sessionId")
	if sessionId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	data, err := h.Service.GetSession(sessionId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

// AddClips ingests the multipart "clips" field. Per-file rejections travel
// in the payload, not as a request-level error.
func (h Handler) AddClips(c *gin.Context) {
	sessionId := c.Param("sessionId")
	form, err := c.MultipartForm()
	if err != nil {
		log.GetLogger().Error("AddClips MultipartForm err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	files := form.File["clips"]
	if len(files) == 0 {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	data, err := h.Service.AddClips(c.Request.Context(), sessionId, files)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) AddClipFromURL(c *gin.Context) {
	sessionId := c.Param("sessionId")

	var req dto.AddClipFromURLReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("AddClipFromURL ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	data, err := h.Service.AddClipFromURL(c.Request.Context(), sessionId, req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

// StartExport registers the job, then hands it to the configured executor.
func (h Handler) StartExport(c *gin.Context) {
	sessionId := c.Param("sessionId")

	data, err := h.Service.StartExport(sessionId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	if config.Conf.Queue.Provider == "redis" && h.Queue != nil {
		err = h.Queue.EnqueueExportTask(queue.ExportTaskPayload{JobID: data.JobId, SessionID: sessionId})
	} else {
		err = h.Runner.SubmitExportTask(taskrunner.ExportTaskPayload{JobID: data.JobId, SessionID: sessionId})
	}
	if err != nil {
		log.GetLogger().Error("StartExport submit err", zap.String("job_id", data.JobId), zap.Error(err))
		h.Service.CancelExport(data.JobId, apperrors.ErrExportFailed.Message)
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeExportFailed, apperrors.ErrExportFailed.Message, err))
		return
	}

	response.Success(c, data)
}

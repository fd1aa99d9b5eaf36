package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"clipforge/internal/dto"
	"clipforge/internal/response"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin policy does not apply to a local single-user tool.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h Handler) GetExportStatus(c *gin.Context) {
	jobId := c.Param("jobId")
	if jobId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	data, err := h.Service.ExportStatus(jobId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

// GetExportHistory lists a session's past export jobs, newest first.
func (h Handler) GetExportHistory(c *gin.Context) {
	sessionId := c.Param("sessionId")
	if sessionId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	data, err := h.Service.ExportHistory(sessionId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

// ExportEvents streams a job's progress and log events over a websocket
// until the job reaches a terminal state or the client goes away.
func (h Handler) ExportEvents(c *gin.Context) {
	jobId := c.Param("jobId")

	status, err := h.Service.ExportStatus(jobId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Error("ExportEvents upgrade err", zap.String("job_id", jobId), zap.Error(err))
		return
	}
	defer conn.Close()

	// Already finished: one terminal frame and done.
	if status.Status != types.ExportJobStatusRunning {
		_ = conn.WriteJSON(terminalEvent(status))
		return
	}

	events, cancel, err := h.Service.SubscribeExport(jobId)
	if err != nil {
		_ = conn.WriteJSON(dto.ExportEvent{Type: "failed", Message: apperrors.GetMessage(err)})
		return
	}
	defer cancel()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event := <-events:
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			if event.Type == "done" || event.Type == "failed" {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}

func terminalEvent(status dto.ExportStatusResData) dto.ExportEvent {
	if status.Status == types.ExportJobStatusSuccess {
		return dto.ExportEvent{Type: "done", Message: status.ResultKey}
	}
	return dto.ExportEvent{Type: "failed", Message: status.FailReason}
}

package router

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"clipforge/internal/handler"
	"clipforge/internal/queue"
	"clipforge/internal/service"
	"clipforge/internal/taskrunner"
	"clipforge/log"
)

func SetupRouter(r *gin.Engine, svc *service.Service, runner *taskrunner.Runner, q *queue.Queue) {
	api := r.Group("/api")

	hdl := handler.NewHandler(svc, runner, q)
	{
		api.POST("/session", hdl.CreateSession)
		api.GET("/session/:sessionId", hdl.GetSession)
		api.POST("/session/:sessionId/clips", hdl.AddClips)
		api.POST("/session/:sessionId/clips/url", hdl.AddClipFromURL)
		api.POST("/session/:sessionId/export", hdl.StartExport)
		api.GET("/session/:sessionId/exports", hdl.GetExportHistory)

		api.PATCH("/clip/:clipId", hdl.UpdateClip)
		api.DELETE("/clip/:clipId", hdl.DeleteClip)
		api.POST("/clip/:clipId/move", hdl.MoveClip)
		api.POST("/clip/:clipId/playhead", hdl.ReportPlayhead)
		api.POST("/clip/:clipId/boundary", hdl.SetBoundary)

		api.GET("/export/:jobId", hdl.GetExportStatus)
		api.GET("/export/:jobId/events", hdl.ExportEvents)

		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)
	}

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/static")
	})
	if _, err := os.Stat("static"); err == nil {
		log.GetLogger().Info("Using local static directory")
		r.Static("/static", "static")
	}
}

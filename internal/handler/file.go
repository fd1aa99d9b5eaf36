package handler

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"clipforge/internal/response"
)

// DownloadFile serves clip previews and export results by their blob-store
// relative path.
func (h Handler) DownloadFile(c *gin.Context) {
	requestedFile := c.Param("filepath")
	if requestedFile == "" {
		response.R(c, response.Response{
			Error: -1,
			Msg:   "文件路径为空 File path is empty",
			Data:  nil,
		})
		return
	}

	localFilePath, ok := resolveDownloadPath(requestedFile)
	if !ok {
		c.JSON(404, response.Response{
			Error: -1,
			Msg:   "文件不存在 File not found",
			Data:  nil,
		})
		return
	}
	if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
		c.JSON(404, response.Response{
			Error: -1,
			Msg:   "文件不存在 File not found",
			Data:  nil,
		})
		return
	}
	c.FileAttachment(localFilePath, filepath.Base(localFilePath))
}

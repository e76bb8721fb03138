package fileHandler

import (
	"net/http"
	"strconv"

	"files-manager/internal/handler/respond"
	"files-manager/internal/model/apperr"
	"files-manager/internal/model/fileInfo"
	"files-manager/internal/service/fileService"
	"files-manager/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	fileService *fileService.FileService
}

func NewFileHandler(fileService *fileService.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload handles POST /files.
func (h *FileHandler) Upload(c *gin.Context) {
	var in fileService.CreateFileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, apperr.Validation("Invalid request body"))
		return
	}

	file, err := h.fileService.CreateFile(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

// Show handles GET /files/:id.
func (h *FileHandler) Show(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}
	file, err := h.fileService.GetFile(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// Index handles GET /files?parentId=&page=. Malformed numbers fall back to 0.
func (h *FileHandler) Index(c *gin.Context) {
	parentID, _ := strconv.ParseInt(c.Query("parentId"), 10, 64)
	page, _ := strconv.Atoi(c.Query("page"))

	files, err := h.fileService.ListFiles(c.Request.Context(), middleware.UserID(c), parentID, page, fileService.DefaultPageSize)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (h *FileHandler) Publish(c *gin.Context) {
	h.setPublic(c, true)
}

func (h *FileHandler) Unpublish(c *gin.Context) {
	h.setPublic(c, false)
}

func (h *FileHandler) setPublic(c *gin.Context, value bool) {
	id, ok := fileID(c)
	if !ok {
		return
	}
	file, err := h.fileService.SetPublic(c.Request.Context(), middleware.UserID(c), id, value)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// Data handles GET /files/:id/data?size=. Anonymous callers may read public files.
func (h *FileHandler) Data(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))

	content, err := h.fileService.ReadFileContent(c.Request.Context(), middleware.UserID(c), id, size)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.Data(http.StatusOK, content.MimeType, content.Data)
}

// fileID parses the :id param. An id that cannot exist is reported like a missing file.
func fileID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= fileInfo.RootID {
		respond.Error(c, apperr.NotFound("Not found"))
		return 0, false
	}
	return id, true
}

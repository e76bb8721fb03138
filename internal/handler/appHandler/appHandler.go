package appHandler

import (
	"net/http"

	"files-manager/internal/handler/respond"
	"files-manager/internal/service/appService"

	"github.com/gin-gonic/gin"
)

type AppHandler struct {
	appService *appService.AppService
}

func New(service *appService.AppService) *AppHandler {
	return &AppHandler{appService: service}
}

func (h *AppHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.appService.Status(c.Request.Context()))
}

func (h *AppHandler) Stats(c *gin.Context) {
	stats, err := h.appService.Stats(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

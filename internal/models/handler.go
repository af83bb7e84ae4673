package models

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docmind-backend/internal/shared/server/respond"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/models", h.list)
}

func (h *Handler) list(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{"models": Available()})
}

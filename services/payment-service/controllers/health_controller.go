package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	storeConfigured func() bool
}

func NewHealthController(storeConfigured func() bool) *HealthController {
	return &HealthController{storeConfigured: storeConfigured}
}

// Health handles GET /api/health
func (hc *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "databaseConfigured": hc.storeConfigured()})
}

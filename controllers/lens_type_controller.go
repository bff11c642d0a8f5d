package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/otica-api/config"
	"github.com/kendall-kelly/otica-api/services"
)

// ListLensTypes handles GET /api/lens-types - returns every active lens type
func ListLensTypes(c *gin.Context) {
	cfg := config.GetConfig()
	catalog := services.NewCatalogService(config.GetDB(), services.GetCache(), cfg.CatalogCacheTTL)

	lensTypes, err := catalog.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"lensTypes": lensTypes,
		"total":     len(lensTypes),
	})
}

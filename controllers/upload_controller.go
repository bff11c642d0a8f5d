package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/otica-api/config"
	"github.com/kendall-kelly/otica-api/services"
	"github.com/kendall-kelly/otica-api/utils"
)

// UploadFile handles POST /api/upload - stores a checkout document (multipart "file"
// plus a "type" prefix) and returns its public URL
func UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, &utils.FileUploadError{Code: "MISSING_FILE", Message: "No file uploaded"})
		return
	}

	storage := services.GetStorage()
	if storage == nil {
		cfg := config.GetConfig()
		storage = services.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPrefix)
	}

	result, err := services.NewUploadService(storage).Upload(c.Request.Context(), fileHeader, c.PostForm("type"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, result, "Arquivo enviado com sucesso")
}

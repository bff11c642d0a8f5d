package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/otica-api/middleware"
	"github.com/kendall-kelly/otica-api/services"
	"github.com/kendall-kelly/otica-api/utils"
	"github.com/rs/zerolog/log"
)

// respondSuccess writes {"success":true,"data":data}
func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondMessage(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
		"message": message,
	})
}

// respondError maps err onto the error envelope. Errors that are not part of the
// client contract are logged with the request id and reported as a bare 500.
func respondError(c *gin.Context, err error) {
	if appErr, ok := services.AsAppError(err); ok {
		body := gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		}
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
		response := gin.H{"success": false, "error": body}
		if appErr.Kind == services.KindUnauthenticated {
			response["redirect"] = middleware.LoginRedirect
		}
		c.JSON(appErr.HTTPStatus(), response)
		return
	}

	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    uploadErr.Code,
				"message": uploadErr.Message,
			},
		})
		return
	}

	log.Error().
		Err(err).
		Str("request_id", middleware.GetRequestID(c)).
		Str("path", c.Request.URL.Path).
		Msg("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Internal server error",
		},
	})
}

// currentUserID returns the authenticated caller, answering 401 when there is none
func currentUserID(c *gin.Context) (string, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    services.CodeUnauthorized,
				"message": "Could not extract user information",
			},
			"redirect": middleware.LoginRedirect,
		})
		return "", false
	}
	return userID, true
}

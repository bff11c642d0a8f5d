package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/otica-api/services"
)

// Cookie names shared with the front end
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// SetAuthCookies writes both token cookies: HttpOnly, SameSite=Lax, Path=/, and Secure when secure is set
func SetAuthCookies(c *gin.Context, session *services.Session, tokens *services.TokenService, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, session.AccessToken.Token, int(tokens.AccessTTL().Seconds()), "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, session.RefreshToken.Token, int(tokens.RefreshTTL().Seconds()), "/", "", secure, true)
}

// ClearAuthCookies expires both token cookies
func ClearAuthCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

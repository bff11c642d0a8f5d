package middleware

import (
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/otica-api/services"
	"github.com/rs/zerolog/log"
)

// Context keys set on authenticated requests
const (
	UserIDKey    = "user_id"
	UserRoleKey  = "user_role"
	UserEmailKey = "user_email"
)

// LoginRedirect is sent with 401 responses so the front end can send the user to sign in
const LoginRedirect = "/login"

// RequireAuth authenticates the request from the accessToken cookie. When that cookie is
// missing or invalid it tries a silent refresh with the refreshToken cookie; if that fails
// too both cookies are cleared and the request is rejected with a login redirect.
func RequireAuth(auth *services.AuthService, secureCookies bool) gin.HandlerFunc {
	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		// no response here, the refresh fallback below decides
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("Access token rejected")
	}

	middleware := jwtmiddleware.New(
		auth.Tokens().ValidateAccessToken,
		jwtmiddleware.WithTokenExtractor(jwtmiddleware.CookieTokenExtractor(AccessTokenCookie)),
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		var claims *validator.ValidatedClaims
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			claims, _ = r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
		}
		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)

		if claims != nil {
			identity, err := services.IdentityFromClaims(claims)
			if err == nil {
				setIdentity(c, identity.UserID, identity.Role, identity.Email)
				c.Next()
				return
			}
		}

		refreshToken, _ := c.Cookie(RefreshTokenCookie)
		if refreshToken == "" {
			ClearAuthCookies(c, secureCookies)
			abortUnauthorized(c, services.CodeUnauthorized, "Authentication required")
			return
		}

		session, err := auth.Refresh(c.Request.Context(), refreshToken)
		if err != nil {
			if _, ok := services.AsAppError(err); !ok {
				log.Error().Err(err).Str("request_id", GetRequestID(c)).Msg("Silent refresh failed")
			}
			ClearAuthCookies(c, secureCookies)
			abortUnauthorized(c, services.CodeInvalidRefreshToken, "Session expired, please sign in again")
			return
		}

		SetAuthCookies(c, session, auth.Tokens(), secureCookies)
		setIdentity(c, session.User.ID, session.User.Role, session.User.Email)
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose token role is not one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetUserRole(c)
		if role == "" {
			abortUnauthorized(c, services.CodeUnauthorized, "Authentication required")
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    services.CodeForbidden,
				"message": "Insufficient permissions to access this resource",
			},
		})
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetUserRole returns the role of the authenticated caller, or "" if unauthenticated
func GetUserRole(c *gin.Context) string {
	return c.GetString(UserRoleKey)
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func setIdentity(c *gin.Context, userID, role, email string) {
	c.Set(UserIDKey, userID)
	c.Set(UserRoleKey, role)
	c.Set(UserEmailKey, email)
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
		"redirect": LoginRedirect,
	})
}

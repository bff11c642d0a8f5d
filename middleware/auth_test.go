package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kendall-kelly/otica-api/config"
	"github.com/kendall-kelly/otica-api/models"
	"github.com/kendall-kelly/otica-api/services"
	"github.com/kendall-kelly/otica-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	cfg    *config.Config
	auth   *services.AuthService
	user   models.User
	router *gin.Engine
}

func setupAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	services.BcryptCost = bcrypt.MinCost

	cfg := testutil.TestConfig(t)
	db := testutil.SetupTestDB(t)
	tokens, err := services.NewTokenService(cfg)
	require.NoError(t, err)

	f := &authFixture{
		cfg:  cfg,
		auth: services.NewAuthService(db, tokens),
		user: testutil.CreateCustomerUser(t, db, "cliente@teste.com", "cliente123"),
	}

	f.router = gin.New()
	f.router.GET("/protected", RequireAuth(f.auth, false), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": GetUserRole(c)})
	})
	return f
}

func (f *authFixture) do(t *testing.T, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	f.router.ServeHTTP(w, req)
	return w
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func expiredAccessToken(t *testing.T, cfg *config.Config, user models.User) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"jti":   "expired-jti",
		"iss":   cfg.JWTIssuer,
		"aud":   []string{services.AccessAudience},
		"iat":   time.Now().Add(-time.Hour).Unix(),
		"exp":   time.Now().Add(-5 * time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)
	return token
}

func TestRequireAuthValidAccessCookie(t *testing.T) {
	f := setupAuthFixture(t)
	session, err := f.auth.Login(context.Background(), f.user.Email, "cliente123")
	require.NoError(t, err)

	w := f.do(t, &http.Cookie{Name: AccessTokenCookie, Value: session.AccessToken.Token})

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, f.user.ID, body["user_id"])
	assert.Equal(t, models.RoleCustomer, body["role"])
	assert.Nil(t, cookieByName(w, AccessTokenCookie), "no rotation when the access token is valid")
}

func TestRequireAuthSilentRefresh(t *testing.T) {
	f := setupAuthFixture(t)
	session, err := f.auth.Login(context.Background(), f.user.Email, "cliente123")
	require.NoError(t, err)

	w := f.do(t,
		&http.Cookie{Name: AccessTokenCookie, Value: expiredAccessToken(t, f.cfg, f.user)},
		&http.Cookie{Name: RefreshTokenCookie, Value: session.RefreshToken.Token},
	)

	require.Equal(t, http.StatusOK, w.Code)
	access := cookieByName(w, AccessTokenCookie)
	refresh := cookieByName(w, RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.NotEqual(t, session.RefreshToken.Token, refresh.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)
}

func TestRequireAuthStaleCookiesSentTwice(t *testing.T) {
	f := setupAuthFixture(t)
	session, err := f.auth.Login(context.Background(), f.user.Email, "cliente123")
	require.NoError(t, err)

	stale := []*http.Cookie{
		{Name: AccessTokenCookie, Value: expiredAccessToken(t, f.cfg, f.user)},
		{Name: RefreshTokenCookie, Value: session.RefreshToken.Token},
	}

	first := f.do(t, stale...)
	second := f.do(t, stale...)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())

	// the cookies issued to the first request stay valid
	fresh := cookieByName(first, RefreshTokenCookie)
	require.NotNil(t, fresh)
	w := f.do(t,
		&http.Cookie{Name: AccessTokenCookie, Value: expiredAccessToken(t, f.cfg, f.user)},
		fresh,
	)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRequireAuthRefreshWithoutAccessCookie(t *testing.T) {
	f := setupAuthFixture(t)
	session, err := f.auth.Login(context.Background(), f.user.Email, "cliente123")
	require.NoError(t, err)

	w := f.do(t, &http.Cookie{Name: RefreshTokenCookie, Value: session.RefreshToken.Token})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthRejects(t *testing.T) {
	tests := []struct {
		name     string
		cookies  func(f *authFixture) []*http.Cookie
		wantCode string
	}{
		{
			name:     "no cookies",
			cookies:  func(f *authFixture) []*http.Cookie { return nil },
			wantCode: services.CodeUnauthorized,
		},
		{
			name: "invalid access and no refresh",
			cookies: func(f *authFixture) []*http.Cookie {
				return []*http.Cookie{{Name: AccessTokenCookie, Value: "garbage"}}
			},
			wantCode: services.CodeUnauthorized,
		},
		{
			name: "invalid refresh",
			cookies: func(f *authFixture) []*http.Cookie {
				return []*http.Cookie{{Name: RefreshTokenCookie, Value: "garbage"}}
			},
			wantCode: services.CodeInvalidRefreshToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupAuthFixture(t)
			w := f.do(t, tt.cookies(f)...)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, LoginRedirect, body["redirect"])
			errBody := body["error"].(map[string]interface{})
			assert.Equal(t, tt.wantCode, errBody["code"])

			access := cookieByName(w, AccessTokenCookie)
			require.NotNil(t, access, "cookies are cleared")
			assert.Equal(t, "", access.Value)
			assert.True(t, access.MaxAge < 0)
		})
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"admin allowed", models.RoleAdmin, http.StatusOK},
		{"customer forbidden", models.RoleCustomer, http.StatusForbidden},
		{"unauthenticated", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/admin", func(c *gin.Context) {
				if tt.role != "" {
					testutil.SetMockAuthContext(c, "u-1", tt.role, "u@x.com")
				}
				c.Next()
			}, RequireRole(models.RoleAdmin), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantID    string
		wantErr   bool
	}{
		{
			name: "successfully extracts user ID",
			setupFunc: func(c *gin.Context) {
				c.Set(UserIDKey, "6f1c2d3e-0000-4000-8000-000000000001")
			},
			wantID: "6f1c2d3e-0000-4000-8000-000000000001",
		},
		{
			name:      "user ID not found in context",
			setupFunc: func(c *gin.Context) {},
			wantErr:   true,
		},
		{
			name: "user ID is not a string",
			setupFunc: func(c *gin.Context) {
				c.Set(UserIDKey, 12345)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.setupFunc(c)

			gotID, err := GetUserID(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, gotID)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, gotID)
			}
		})
	}
}

func TestAuthError(t *testing.T) {
	err := &AuthError{
		Code:    "TEST_ERROR",
		Message: "This is a test error",
	}

	assert.Equal(t, "This is a test error", err.Error())
}

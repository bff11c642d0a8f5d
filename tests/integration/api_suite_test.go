package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/otica-api/config"
	"github.com/kendall-kelly/otica-api/controllers"
	"github.com/kendall-kelly/otica-api/middleware"
	"github.com/kendall-kelly/otica-api/routes"
	"github.com/kendall-kelly/otica-api/services"
	"github.com/kendall-kelly/otica-api/tests/testutil"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// apiSuite runs every test against a fresh database through the full router
type apiSuite struct {
	suite.Suite
	db     *gorm.DB
	cfg    *config.Config
	router *gin.Engine
}

func (s *apiSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	services.BcryptCost = bcrypt.MinCost
}

func (s *apiSuite) SetupTest() {
	testutil.MustSetTestEnvironment(s.T())
	s.cfg = testutil.TestConfig(s.T())
	s.db = testutil.SetupTestDB(s.T())
	testutil.SeedCatalog(s.T(), s.db)

	services.SetCache(nil)
	services.SetStorage(services.NewLocalStorage(s.cfg.UploadDir, s.cfg.UploadURLPrefix))
	services.SetEventPublisher(nil)

	s.router = s.buildRouter()
}

func (s *apiSuite) buildRouter() *gin.Engine {
	auth, err := controllers.NewAuthService()
	s.Require().NoError(err)
	return routes.Setup(s.cfg, auth)
}

func (s *apiSuite) request(method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *apiSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

func (s *apiSuite) errorCode(w *httptest.ResponseRecorder) string {
	errorData, ok := s.decode(w)["error"].(map[string]interface{})
	s.Require().True(ok, w.Body.String())
	return errorData["code"].(string)
}

func (s *apiSuite) data(w *httptest.ResponseRecorder) map[string]interface{} {
	return s.decode(w)["data"].(map[string]interface{})
}

func cookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// login signs in and returns the access and refresh cookies
func (s *apiSuite) login(email, password string) (*http.Cookie, *http.Cookie) {
	w := s.request(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	access := cookie(w, middleware.AccessTokenCookie)
	refresh := cookie(w, middleware.RefreshTokenCookie)
	s.Require().NotNil(access)
	s.Require().NotNil(refresh)
	return access, refresh
}

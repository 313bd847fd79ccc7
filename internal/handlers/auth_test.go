package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/taskdesk-api/internal/constants"
	"github.com/taskdesk/taskdesk-api/internal/middleware"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
	"github.com/taskdesk/taskdesk-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	handler *AuthHandler
	tokens  *services.TokenService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo)
	tokens := services.NewTokenService("test-secret")
	handler := NewAuthHandler(authService, tokens)

	gin.SetMode(gin.TestMode)

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/register", handler.Register)
	r.POST("/api/auth/login", handler.Login)
	r.POST("/api/auth/logout", handler.Logout)
	r.GET("/api/auth/me", middleware.RequireAuth(userRepo, tokens), handler.GetCurrentUser)
	r.PUT("/api/profile", middleware.RequireAuth(userRepo, tokens), handler.UpdateProfile)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:      db,
		router:  r,
		handler: handler,
		tokens:  tokens,
	}
}

func (env authTestEnv) do(t *testing.T, method, url string, payload interface{}, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "supersecret",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "New User", response["name"])
	require.Equal(t, "new@example.com", response["email"])
	require.Equal(t, "user", response["role"])
	require.NotContains(t, response, "password")
	require.NotContains(t, response, "password_hash")

	var stored models.User
	require.NoError(t, env.db.Where("email = ?", "new@example.com").First(&stored).Error)
	require.NotEqual(t, "supersecret", stored.PasswordHash)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := map[string]string{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "supersecret",
	}

	w := env.do(t, http.MethodPost, "/api/auth/register", payload, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/register", payload, "")
	require.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "CONFLICT", response["code"])
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "short",
	}, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "supersecret",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "new@example.com",
		"password": "supersecret",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		User  map[string]interface{} `json:"user"`
		Token string                 `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "new@example.com", response.User["email"])
	require.NotEmpty(t, response.Token)

	// A session cookie must be set alongside the bearer token.
	cookies := w.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == constants.SessionCookieName {
			found = true
		}
	}
	require.True(t, found)

	userID, err := env.tokens.Verify(response.Token)
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, env.db.Where("email = ?", "new@example.com").First(&stored).Error)
	require.Equal(t, stored.ID, userID)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "supersecret",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "new@example.com",
		"password": "wrongpassword",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me_WithBearerToken(t *testing.T) {
	env := setupAuthTestEnv(t)

	user := &models.User{
		Name:         "Existing",
		Email:        "existing@example.com",
		PasswordHash: "hashedpassword",
		Role:         models.RoleUser,
	}
	require.NoError(t, env.db.Create(user).Error)

	token, err := env.tokens.Issue(user.ID)
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/auth/me", nil, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "existing@example.com", response["email"])
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	env := setupAuthTestEnv(t)

	user := &models.User{
		Name:         "Old Name",
		Email:        "existing@example.com",
		PasswordHash: "hashedpassword",
		Role:         models.RoleUser,
	}
	require.NoError(t, env.db.Create(user).Error)

	token, err := env.tokens.Issue(user.ID)
	require.NoError(t, err)

	w := env.do(t, http.MethodPut, "/api/profile", map[string]string{
		"name": "New Name",
	}, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.User
	require.NoError(t, env.db.First(&stored, user.ID).Error)
	require.Equal(t, "New Name", stored.Name)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortkat/internal/identity"
	"shortkat/internal/kvstore"
	"shortkat/internal/repositories"
)

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := kvstore.NewMemoryStore()
	locks := kvstore.NewKeyedMutex()
	users := repositories.NewUserRepo(store, locks)
	issuer := identity.NewJWTProvider("test-secret", time.Hour)
	identitySvc := identity.NewService(store, users, issuer, locks)
	handler := NewAuthHandler(identitySvc, nil)

	r := gin.New()
	r.POST("/signup", handler.Signup)
	r.POST("/signin", handler.Signin)
	return r
}

func TestSignupAndSignin(t *testing.T) {
	router := setupAuthRouter()

	body := `{"email":"alice@example.com","password":"secret","username":"alice","displayName":"Alice"}`
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var signup map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&signup))
	assert.Equal(t, true, signup["isFirstUser"])
	assert.NotEmpty(t, signup["accessToken"])

	req = httptest.NewRequest(http.MethodPost, "/signin", bytes.NewBufferString(`{"email":"alice@example.com","password":"secret"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var signin map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&signin))
	assert.NotEmpty(t, signin["accessToken"])
}

func TestSignupDuplicateEmailRejected(t *testing.T) {
	router := setupAuthRouter()

	body := `{"email":"alice@example.com","password":"secret","username":"alice"}`
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupMissingBody(t *testing.T) {
	router := setupAuthRouter()

	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString(`{"email":"a@b.c"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSigninWrongPasswordUnauthorized(t *testing.T) {
	router := setupAuthRouter()

	body := `{"email":"alice@example.com","password":"secret","username":"alice"}`
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/signin", bytes.NewBufferString(`{"email":"alice@example.com","password":"nope"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

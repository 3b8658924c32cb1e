package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tontiva/tontine-backend/internal/config"
	"github.com/tontiva/tontine-backend/internal/handlers"
	"github.com/tontiva/tontine-backend/internal/repositories/memory"
	"github.com/tontiva/tontine-backend/internal/services"
	"github.com/tontiva/tontine-backend/pkg/events"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpiresIn: 3600},
		Tontine: config.TontineConfig{
			InviteBaseURL: "http://localhost:3000",
			CodeLength:    6,
			CodeRetries:   5,
		},
	}

	userRepo := memory.NewUserRepository()
	tontineRepo := memory.NewTontineRepository()
	participantRepo := memory.NewParticipantRepository()
	paymentRepo := memory.NewPaymentRepository()

	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	tontineService := services.NewTontineService(tontineRepo, participantRepo, events.Noop{}, cfg)
	paymentService := services.NewPaymentService(paymentRepo, tontineRepo, participantRepo, events.Noop{})

	return SetupRouter(cfg, HandlerDependencies{
		AuthHandler:    handlers.NewAuthHandler(authService),
		UserHandler:    handlers.NewUserHandler(userService),
		TontineHandler: handlers.NewTontineHandler(tontineService, userService),
		PaymentHandler: handlers.NewPaymentHandler(paymentService, userService),
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// registerAndLogin creates an account through the API and returns its
// bearer token and user id.
func registerAndLogin(t *testing.T, router *gin.Engine, email, role string) (string, string) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"firstName": "Ama",
		"lastName":  "Diallo",
		"email":     email,
		"password":  "s3cret-pass",
		"role":      role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	user, _ := resp["user"].(map[string]any)
	require.NotNil(t, user)
	id, _ := user["id"].(string)
	require.NotEmpty(t, id)
	return token, id
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/tontines", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/tontines", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTontineLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	initiatorToken, initiatorID := registerAndLogin(t, router, "init@example.com", "initiatrice")
	memberToken, memberID := registerAndLogin(t, router, "member@example.com", "participant")

	// Create
	w := doJSON(t, router, http.MethodPost, "/api/v1/tontines", initiatorToken, gin.H{
		"name":      "Village savings",
		"kind":      "money",
		"amount":    5000,
		"cadence":   "monthly",
		"startDate": "2026-03-01T00:00:00Z",
		"unlimitedMembers": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	tontineID, _ := created["id"].(string)
	inviteCode, _ := created["inviteCode"].(string)
	require.NotEmpty(t, tontineID)
	require.Len(t, inviteCode, 6)
	assert.Equal(t, "pending", created["status"])

	// Participants cannot create tontines
	w = doJSON(t, router, http.MethodPost, "/api/v1/tontines", memberToken, gin.H{
		"name":      "Nope",
		"kind":      "money",
		"amount":    1000,
		"cadence":   "weekly",
		"startDate": "2026-03-01T00:00:00Z",
		"unlimitedMembers": true,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Anyone can preview an invitation without logging in
	w = doJSON(t, router, http.MethodGet, "/api/v1/invitations/"+inviteCode, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	preview := decode(t, w)
	assert.Equal(t, "Village savings", preview["name"])

	w = doJSON(t, router, http.MethodGet, "/api/v1/invitations/XXXXXX", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Join by code
	w = doJSON(t, router, http.MethodPost, "/api/v1/tontines/join", memberToken, gin.H{"code": inviteCode})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	joined := decode(t, w)
	assert.Equal(t, float64(0), joined["position"])
	assert.Equal(t, "unpaid", joined["paymentStatus"])

	// Submitting before activation is rejected
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/tontines/%s/payments", tontineID), memberToken, gin.H{"amount": 5000})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Only the initiator can activate
	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/tontines/%s/status", tontineID), memberToken, gin.H{"status": "active"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/tontines/%s/status", tontineID), initiatorToken, gin.H{"status": "active"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "active", decode(t, w)["status"])

	// Reorder with a non-permutation is a bad request
	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/tontines/%s/order", tontineID), initiatorToken, gin.H{"order": []string{memberID, initiatorID}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/tontines/%s/order", tontineID), initiatorToken, gin.H{"order": []string{memberID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Submit and validate a payment
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/tontines/%s/payments", tontineID), memberToken, gin.H{"amount": 5000, "period": "March 2026"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	payment := decode(t, w)
	paymentID, _ := payment["id"].(string)
	require.NotEmpty(t, paymentID)
	assert.Equal(t, "pending", payment["status"])

	w = doJSON(t, router, http.MethodPost, "/api/v1/payments/"+paymentID+"/validate", memberToken, gin.H{"decision": "confirm"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/payments/"+paymentID+"/validate", initiatorToken, gin.H{"decision": "confirm"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "confirmed", decode(t, w)["status"])

	// A second decision on the same payment conflicts
	w = doJSON(t, router, http.MethodPost, "/api/v1/payments/"+paymentID+"/validate", initiatorToken, gin.H{"decision": "reject"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Roster reflects the confirmed payment
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/tontines/%s/participants", tontineID), initiatorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var roster []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roster))
	require.Len(t, roster, 1)
	assert.Equal(t, "confirmed", roster[0]["paymentStatus"])

	// Member sees the tontine in their listing
	w = doJSON(t, router, http.MethodGet, "/api/v1/tontines", memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing, 1)
	assert.Equal(t, tontineID, listing[0]["id"])
}

func TestProfileOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token, _ := registerAndLogin(t, router, "ama@example.com", "participant")

	w := doJSON(t, router, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)
	assert.Equal(t, "ama@example.com", profile["email"])

	w = doJSON(t, router, http.MethodPut, "/api/v1/users/me", token, gin.H{"phone": "+221770000000"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "+221770000000", decode(t, w)["phone"])
}

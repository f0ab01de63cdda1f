package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reverie-revival/internal/domain"
	"reverie-revival/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func testTokens() TokenValidator {
	return service.NewAdminService(nil, nil, service.TokenSettings{Secret: testSecret})
}

func signToken(t *testing.T, adminID uuid.UUID, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := &service.Claims{
		UserID: adminID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// Protected endpoints reject requests without a token
func TestProperty_ProtectedEndpointsRejectMissingTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests without authorization header are rejected", prop.ForAll(
		func(pathSuffix string, method string) bool {
			handler := AuthMiddleware(testTokens(), zap.NewNop())(okHandler())

			path := "/api/admin/" + pathSuffix
			req := httptest.NewRequest(method, path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
		gen.OneConstOf("GET", "POST", "PUT", "PATCH"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	handler := AuthMiddleware(testTokens(), zap.NewNop())(okHandler())

	req := httptest.NewRequest("GET", "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New(), domain.RoleAdmin, -time.Hour))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), CodeTokenExpired)
}

func TestAuthMiddleware_ValidTokenSetsContext(t *testing.T) {
	adminID := uuid.New()
	var gotID uuid.UUID
	var gotRole string

	handler := AuthMiddleware(testTokens(), zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetAdminID(r.Context())
		gotRole, _ = GetUserRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, adminID, domain.RoleAdmin, time.Hour))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, adminID, gotID)
	assert.Equal(t, domain.RoleAdmin, gotRole)
}

func TestAuthMiddleware_RejectsTokenWithoutAdminID(t *testing.T) {
	handler := AuthMiddleware(testTokens(), zap.NewNop())(okHandler())

	req := httptest.NewRequest("GET", "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.Nil, domain.RoleAdmin, time.Hour))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProperty_InvalidTokenFormatRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("garbage bearer tokens are rejected", prop.ForAll(
		func(invalidToken string) bool {
			handler := AuthMiddleware(testTokens(), zap.NewNop())(okHandler())

			req := httptest.NewRequest("GET", "/api/admin/orders", nil)
			req.Header.Set("Authorization", "Bearer "+invalidToken)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_MissingBearerPrefixRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("tokens without Bearer prefix are rejected", prop.ForAll(
		func(scheme string) bool {
			token := signToken(t, uuid.New(), domain.RoleAdmin, time.Hour)
			handler := AuthMiddleware(testTokens(), zap.NewNop())(okHandler())

			req := httptest.NewRequest("GET", "/api/admin/orders", nil)
			req.Header.Set("Authorization", scheme+" "+token)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.OneConstOf("", "bearer", "Basic", "Token"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRequireAdmin(t *testing.T) {
	tokens := testTokens()
	handler := AuthMiddleware(tokens, zap.NewNop())(RequireAdmin(zap.NewNop())(okHandler()))

	cases := map[string]struct {
		role string
		want int
	}{
		"admin":    {domain.RoleAdmin, http.StatusOK},
		"customer": {"customer", http.StatusForbidden},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/admin/inventory", nil)
			req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New(), tc.role, time.Hour))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
		})
	}

	w := httptest.NewRecorder()
	RequireAdmin(zap.NewNop())(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusForbidden, w.Code, "no role on context")
}

func TestRequireDatabase(t *testing.T) {
	w := httptest.NewRecorder()
	RequireDatabase(false)(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/api/admin/orders", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), CodeUnavailable)

	w = httptest.NewRecorder()
	RequireDatabase(true)(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/api/admin/orders", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

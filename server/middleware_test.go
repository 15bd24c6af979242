package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testRouter(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := New(&config.Config{}, zap.NewNop(), nil, nil, nil, nil)
	return s, gin.New()
}

func TestIdentityRequired(t *testing.T) {
	s, router := testRouter(t)
	router.GET("/me", s.identityRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": currentUserID(c)})
	})

	// no identity header: rejected before the handler runs
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// forwarded identity passes through
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(headerUserID, "user-1")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestAdminRequired(t *testing.T) {
	s, router := testRouter(t)
	router.GET("/admin/ping", s.identityRequired(), s.adminRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	tests := []struct {
		name string
		role string
		code int
	}{
		{"missing role defaults to customer", "", http.StatusForbidden},
		{"customer role", models.RoleCustomer, http.StatusForbidden},
		{"admin role", models.RoleAdmin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			req.Header.Set(headerUserID, "user-1")
			if tt.role != "" {
				req.Header.Set(headerUserRole, tt.role)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

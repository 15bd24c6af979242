package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/repository"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*repository.Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return repository.NewStore(db), mock
}

// Zero, negative and non-numeric page/limit values must fall back to the
// defaults instead of reaching the paging arithmetic.
func TestListProductsClampsPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, mock := newMockStore(t)
	s := New(&config.Config{}, zap.NewNop(), store, nil, nil, nil)
	router := gin.New()
	router.GET("/products", s.listProducts)

	for _, query := range []string{"?limit=0", "?limit=abc", "?page=0&limit=-5"} {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `products`").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("SELECT .* FROM `products`.*LIMIT (\\?|12)").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/products"+query, nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, "query %q", query)
		assert.Contains(t, w.Body.String(), `"limit":12`, "query %q", query)
		assert.Contains(t, w.Body.String(), `"page":1`, "query %q", query)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

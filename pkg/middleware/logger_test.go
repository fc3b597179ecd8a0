package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-system/pkg/utils"
)

func TestInjectLogger_RequestID(t *testing.T) {
	e := echo.New()

	var seen string
	handler := InjectLogger(zap.NewNop())(func(c echo.Context) error {
		seen = utils.RequestIDFromCtx(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "inv-7f3a")
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, "inv-7f3a", seen)
	assert.Equal(t, "inv-7f3a", rec.Header().Get(echo.HeaderXRequestID))

	// без заголовка ID генерируется и возвращается клиенту
	rec = httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	assert.NotEqual(t, "inv-7f3a", seen)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(echo.HeaderXRequestID))
}

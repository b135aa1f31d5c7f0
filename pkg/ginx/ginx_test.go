package ginx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/vdp/pkg/apierror"
)

type echoRequest struct {
	Name string `json:"name"`
}

type echoResponse struct {
	Name string `json:"name"`
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestHandle(t *testing.T) {
	t.Parallel()

	t.Run("binds request and renders response", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter()
		router.POST("/echo", Handle(func(ctx *gin.Context, req *echoRequest) (*echoResponse, error) {
			return &echoResponse{Name: req.Name}, nil
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"web-1"}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp echoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "web-1", resp.Name)
	})

	t.Run("malformed body rejected with 400", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter()
		router.POST("/echo", Handle(func(ctx *gin.Context, req *echoRequest) (*echoResponse, error) {
			return &echoResponse{}, nil
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, apierror.ErrInvalidParameterValue.Code, resp.Error.Code)
	})

	t.Run("empty body allowed", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter()
		router.POST("/echo", Handle(func(ctx *gin.Context, req *echoRequest) (*echoResponse, error) {
			return &echoResponse{Name: "default"}, nil
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("apierror rendered with its status code", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter()
		router.POST("/echo", Handle(func(ctx *gin.Context, req *echoRequest) (*echoResponse, error) {
			return nil, apierror.WrapError(apierror.ErrQuotaExceeded, "too many deployments", nil)
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, apierror.ErrQuotaExceeded.HTTPStatus, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, apierror.ErrQuotaExceeded.Code, resp.Error.Code)
	})

	t.Run("plain error rendered as 500", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter()
		router.POST("/echo", Handle(func(ctx *gin.Context, req *echoRequest) (*echoResponse, error) {
			return nil, errors.New("boom")
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandleNoReq(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	router.POST("/list", HandleNoReq(func(ctx *gin.Context) (*echoResponse, error) {
		return &echoResponse{Name: "all"}, nil
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/list", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

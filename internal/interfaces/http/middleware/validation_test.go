package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayurcare/backend/internal/interfaces/http/dto"
)

type bindTarget struct {
	Name   string          `json:"name" binding:"required"`
	Factor decimal.Decimal `json:"factor" binding:"gt=0"`
}

func bindRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/bind", func(c *gin.Context) {
		var req bindTarget
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBindError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func postBind(t *testing.T, body string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, req)

	var resp dto.Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHandleBindError(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		w, _ := postBind(t, `{"name":"Triphala","factor":"10"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing field uses json name", func(t *testing.T) {
		w, resp := postBind(t, `{"factor":"10"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "name is required", resp.Error.Message)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "name", resp.Error.Details[0].Field)
		assert.NotEmpty(t, resp.Error.RequestID)
	})

	t.Run("decimal compared as number", func(t *testing.T) {
		w, resp := postBind(t, `{"name":"Triphala","factor":"0"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "factor must be greater than 0", resp.Error.Message)
	})

	t.Run("malformed json", func(t *testing.T) {
		w, resp := postBind(t, `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Contains(t, []string{dto.ErrCodeInvalidJSON, dto.ErrCodeBadRequest}, resp.Error.Code)
	})

	t.Run("wrong json type", func(t *testing.T) {
		w, resp := postBind(t, `{"name":12}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})
}

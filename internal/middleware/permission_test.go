package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
)

func TestRequestMetaSnapshotsJSONBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var meta *services.RequestMeta
	var bound struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	router := gin.New()
	router.POST("/clients", func(c *gin.Context) {
		meta = RequestMeta(c)
		if err := c.ShouldBindJSON(&bound); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	body := bytes.NewBufferString(`{"name":"Jane Doe","password":"hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/clients", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// The snapshot captured the payload and the handler could still bind
	// the body afterwards.
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, meta)
	assert.Equal(t, http.MethodPost, meta.Method)
	assert.Equal(t, "Jane Doe", meta.Payload["name"])
	assert.Equal(t, "hunter2", meta.Payload["password"])
	assert.Equal(t, "Jane Doe", bound.Name)
	assert.Equal(t, "hunter2", bound.Password)
}

func TestRequestMetaSkipsNonJSONBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var meta *services.RequestMeta
	router := gin.New()
	router.POST("/upload", func(c *gin.Context) {
		meta = RequestMeta(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString("raw bytes"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, meta)
	assert.Nil(t, meta.Payload)
}

func TestRequestMetaWithoutBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var meta *services.RequestMeta
	router := gin.New()
	router.GET("/clients", func(c *gin.Context) {
		meta = RequestMeta(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.NotNil(t, meta)
	assert.Nil(t, meta.Payload)
}

package test_utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ControllerInterface interface {
	RegisterRoutes(router *gin.RouterGroup)
}

func CreateTestRouter(controllers ...ControllerInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1")
	for _, controller := range controllers {
		controller.RegisterRoutes(v1)
	}

	return router
}

func MakeAPIRequest(
	router *gin.Engine,
	method, url, authHeader string,
	body any,
) *httptest.ResponseRecorder {
	var requestBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		requestBody = bytes.NewBuffer(data)
	} else {
		requestBody = bytes.NewBuffer(nil)
	}

	request := httptest.NewRequest(method, url, requestBody)
	request.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		request.Header.Set("Authorization", authHeader)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	return recorder
}

func MakeGetRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	url, authHeader string,
	expectedStatus int,
	response any,
) {
	recorder := MakeAPIRequest(router, http.MethodGet, url, authHeader, nil)

	assert.Equal(t, expectedStatus, recorder.Code, "unexpected status, body: %s", recorder.Body.String())
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), response))
}

func MakeRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	method, url, authHeader string,
	body any,
	expectedStatus int,
	response any,
) {
	recorder := MakeAPIRequest(router, method, url, authHeader, body)

	assert.Equal(t, expectedStatus, recorder.Code, "unexpected status, body: %s", recorder.Body.String())
	if response != nil {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), response))
	}
}

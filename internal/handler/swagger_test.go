package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToOpenAPI3(t *testing.T) {
	doc := []byte(`{
		"info": {"title": "Pay-Fi API"},
		"securityDefinitions": {"BearerAuth": {"type": "apiKey"}},
		"definitions": {"handler.Outer": {"properties": {"inner": {"$ref": "#/definitions/handler.Inner"}}}},
		"paths": {
			"/agents/{agentId}/policy": {
				"get": {
					"parameters": [{"name": "agentId", "in": "path", "required": true, "type": "string"}],
					"responses": {"200": {"schema": {"$ref": "#/definitions/handler.Outer"}}}
				}
			}
		}
	}`)

	spec, err := convertToOpenAPI3(doc, DefaultServers("8080"))
	require.NoError(t, err)

	assert.Equal(t, "3.0.3", spec.OpenAPI)
	assert.Equal(t, "http://localhost:8080/api/v1", spec.Servers[0].URL)

	raw, err := json.Marshal(spec)
	require.NoError(t, err)
	body := string(raw)
	assert.NotContains(t, body, "#/definitions/")
	assert.Contains(t, body, `"$ref":"#/components/schemas/handler.Outer"`)
	assert.Contains(t, body, `"$ref":"#/components/schemas/handler.Inner"`)
	assert.Contains(t, body, `"schema":{"type":"string"}`)
	assert.Contains(t, body, `"securitySchemes"`)
}

func TestConvertToOpenAPI3_InvalidJSON(t *testing.T) {
	_, err := convertToOpenAPI3([]byte("{"), nil)
	assert.Error(t, err)
}

func TestOpenAPIHandler_ServeSpec(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := NewOpenAPIHandler(DefaultServers("8080")).ServeSpec(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var spec OpenAPI3Spec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Contains(t, spec.Paths, "/agents/{agentId}/evaluate")
}

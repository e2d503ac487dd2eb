package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func TestError_WritesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	Error[any](c, http.StatusUnauthorized, "Invalid email or password", nil)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid email or password", body["message"])
	assert.Equal(t, "req-1", body["request_id"])
	assert.NotContains(t, body, "data")
	assert.NotContains(t, body, "error")
}

func TestSuccess_DefaultStatus(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	resp := Success(c, 0, map[string]int{"n": 1}, "ok", nil)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"n":1}`, string(mustField(t, w.Body.Bytes(), "data")))
}

func TestEnvelope_Embedded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	payload := struct {
		APIResponse[any]
		Token string `json:"token"`
	}{APIResponse: Envelope(c, http.StatusCreated, true, "created"), Token: "t"}

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(b, &body))
	assert.Equal(t, "t", body["token"])
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, http.StatusCreated, body["status"])
	assert.Empty(t, w.Body.String())
}

func mustField(t *testing.T, raw []byte, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	return m[key]
}

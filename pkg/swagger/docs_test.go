package swagger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocIsValidJSON(t *testing.T) {
	doc, err := Doc()
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))

	assert.Equal(t, "2.0", parsed["swagger"])
	assert.Equal(t, "/", parsed["basePath"])

	paths, ok := parsed["paths"].(map[string]interface{})
	require.True(t, ok)

	for _, p := range []string{"/devices", "/start_stream", "/stop_stream", "/stop_all", "/capture", "/get_calibration_info", "/video_feed"} {
		assert.Contains(t, paths, p)
	}
}

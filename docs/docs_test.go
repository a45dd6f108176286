package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestRegisteredDocumentIsJSON(t *testing.T) {
	doc, err := swag.ReadDoc()
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, "/api/v1", parsed["basePath"])
	assert.Contains(t, parsed["paths"], "/tweet/like/{id}")
}

func TestOperations(t *testing.T) {
	ops, err := Operations()
	require.NoError(t, err)

	assert.Contains(t, ops, "PATCH /api/v1/tweet/:id")
	assert.Contains(t, ops, "GET /api/v1/me/feed")
	assert.Contains(t, ops, "PATCH /api/v1/admin/user/revokeadmin/:id")
	assert.NotContains(t, ops, "PARAMETERS /api/v1/tweet/:id")
}

const compatBase = `
paths:
  /tweet/{id}:
    get:
      responses:
        200: {description: ok}
        404: {description: missing}
    delete:
      responses:
        "200": {description: ok}
  /trending:
    get:
      responses:
        "200": {description: ok}
`

func TestBreaking(t *testing.T) {
	t.Run("embedded document is compatible with itself", func(t *testing.T) {
		issues, err := Breaking(YAML(), YAML())
		require.NoError(t, err)
		assert.Empty(t, issues)
	})

	t.Run("additions are compatible", func(t *testing.T) {
		revision := compatBase + `
  /me/feed:
    get:
      responses:
        "200": {description: ok}
`
		issues, err := Breaking([]byte(compatBase), []byte(revision))
		require.NoError(t, err)
		assert.Empty(t, issues)
	})

	t.Run("removals are reported", func(t *testing.T) {
		revision := `
paths:
  /tweet/{id}:
    get:
      responses:
        "200": {description: ok}
`
		issues, err := Breaking([]byte(compatBase), []byte(revision))
		require.NoError(t, err)
		assert.Equal(t, []string{
			"removed operation: DELETE /tweet/{id}",
			"removed path: /trending",
			"removed response code: GET /tweet/{id} -> 404",
		}, issues)
	})

	t.Run("missing paths", func(t *testing.T) {
		_, err := Breaking([]byte("swagger: '2.0'"), YAML())
		assert.Error(t, err)
	})
}

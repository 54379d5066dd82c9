package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaders(t *testing.T) {
	t.Run("bearer only", func(t *testing.T) {
		header, err := Headers("secret", "", "")
		require.NoError(t, err)
		assert.Equal(t, "Bearer secret", header.Get("Authorization"))
		assert.Len(t, header, 1)
	})

	t.Run("duplicate auth header", func(t *testing.T) {
		header, err := Headers("secret", "", "X-Auth-Token")
		require.NoError(t, err)
		assert.Equal(t, "Bearer secret", header.Get("Authorization"))
		assert.Equal(t, "secret", header.Get("X-Auth-Token"))
	})

	t.Run("extras coexist with bearer", func(t *testing.T) {
		header, err := Headers("secret", `{"X-Tenant":"acme"}`, "")
		require.NoError(t, err)
		assert.Equal(t, "Bearer secret", header.Get("Authorization"))
		assert.Equal(t, "acme", header.Get("X-Tenant"))
	})

	t.Run("extras override bearer", func(t *testing.T) {
		header, err := Headers("secret", `{"Authorization":"Basic xyz"}`, "")
		require.NoError(t, err)
		assert.Equal(t, "Basic xyz", header.Get("Authorization"))
	})

	t.Run("malformed extras are fatal", func(t *testing.T) {
		_, err := Headers("secret", `not-json`, "")
		require.Error(t, err)
	})

	t.Run("no token no extras", func(t *testing.T) {
		header, err := Headers("", "", "X-Auth-Token")
		require.NoError(t, err)
		assert.Empty(t, header)
	})
}

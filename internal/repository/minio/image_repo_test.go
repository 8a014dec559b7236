package minio

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	endpoint := &url.URL{Scheme: "http", Host: "minio:9000"}

	got, err := resolveURL("", endpoint, "insumos", "images/abc-guantes.jpg")
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/insumos/images/abc-guantes.jpg", got)

	got, err = resolveURL("https://cdn.insumos.com.ar", endpoint, "insumos", "images/abc-guantes.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.insumos.com.ar/insumos/images/abc-guantes.jpg", got)
}

func TestResolveURL_BadBase(t *testing.T) {
	_, err := resolveURL("://bad", &url.URL{}, "b", "k")
	assert.Error(t, err)
}

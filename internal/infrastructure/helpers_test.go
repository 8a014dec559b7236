package infrastructure

import (
	"strings"
	"testing"

	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
)

func TestFormatFromMIME(t *testing.T) {
	f, err := FormatFromMIME("image/jpeg")
	assert.NoError(t, err)
	assert.Equal(t, imaging.JPEG, f)

	f, err = FormatFromMIME("IMAGE/PNG")
	assert.NoError(t, err)
	assert.Equal(t, imaging.PNG, f)

	_, err = FormatFromMIME("application/pdf")
	assert.ErrorIs(t, err, e.ErrUnsupportedMediaType)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "guantes-de-nitrilo", SanitizeName("Guantes de Nitrilo.PNG"))
	assert.Equal(t, "foto", SanitizeName(`C:\fotos\foto.jpg`))
	assert.Equal(t, "image", SanitizeName("¿¿??.jpg"))
	assert.Equal(t, "image", SanitizeName(""))
	assert.LessOrEqual(t, len(SanitizeName(strings.Repeat("a", 200)+".jpg")), 64)
}

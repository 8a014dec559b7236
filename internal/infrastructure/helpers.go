package infrastructure

import (
	"path"
	"regexp"
	"strings"

	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/disintegration/imaging"
)

// FormatFromMIME возвращает формат декодера по MIME-типу изображения.
// Поддерживает jpeg, png, gif; для остальных возвращает e.ErrUnsupportedMediaType.
func FormatFromMIME(mime string) (imaging.Format, error) {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return imaging.JPEG, nil
	case "image/png":
		return imaging.PNG, nil
	case "image/gif":
		return imaging.GIF, nil
	default:
		return 0, e.ErrUnsupportedMediaType
	}
}

var unsafeKeyChars = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeName превращает имя файла в безопасный фрагмент ключа объекта.
func SanitizeName(name string) string {
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(name, "\\", "/")), path.Ext(name))
	s := strings.Trim(unsafeKeyChars.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if s == "" || s == "." {
		return "image"
	}
	if len(s) > 64 {
		s = strings.TrimRight(s[:64], "-")
	}

	return s
}

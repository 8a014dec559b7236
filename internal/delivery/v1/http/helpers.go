package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/money"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

const (
	msgMissingFields = "Por favor, completa todos los campos antes de continuar."
	msgLoginFailed   = "Error al iniciar sesión. Verifica tus credenciales."
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ProductMetadata struct {
	Title          string
	SKU            string
	Description    string
	TechnicalSheet string
	BasePrice      decimal.Decimal
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// knownErrors перечисляет ошибки, текст которых можно отдавать клиенту как есть.
var knownErrors = []error{
	e.ErrExpectedMultipart,
	e.ErrInvalidPrice,
	e.ErrPricePrecision,
	e.ErrInvalidQuantity,
	e.ErrFileTooLarge,
	e.ErrNoImages,
	e.ErrUnsupportedMediaType,
	e.ErrEmptyPatch,
	e.ErrStatusBadRequest,
	e.ErrUnauthenticated,
	e.ErrProductNotFound,
	e.ErrCartEmpty,
	e.ErrCartModified,
	e.ErrAdminExists,
}

func ToHTTPResponse(err error) (int, string) {
	code := statusFor(err)

	if errors.Is(err, e.ErrMissingFields) {
		return code, msgMissingFields
	}
	if errors.Is(err, e.ErrInvalidCredentials) {
		return code, msgLoginFailed
	}

	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return code, known.Error()
		}
	}

	switch code {
	case http.StatusBadGateway:
		return code, "upstream service unavailable"
	case http.StatusInternalServerError:
		return code, e.ErrInternalServerError.Error()
	default:
		return code, http.StatusText(code)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, e.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, e.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, e.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, e.ErrRepository), errors.Is(err, e.ErrStorage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parsePrice разбирает строку вида "599.99". Отрицательные значения и больше двух знаков после запятой отклоняются.
func parsePrice(s string) (decimal.Decimal, error) {
	d, err := money.ParseAmount(s)
	if err != nil {
		return decimal.Zero, e.Wrap(s, e.ErrInvalidPrice)
	}

	if d.IsNegative() {
		return decimal.Zero, e.Wrap(s, e.ErrInvalidPrice)
	}

	if d.Exponent() < -2 {
		return decimal.Zero, e.Wrap(s, e.ErrPricePrecision)
	}

	return d, nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest)
	}
	return nil
}

func parseProductForm(r *http.Request) (*ProductMetadata, error) {
	title := strings.TrimSpace(r.FormValue("title"))
	sku := strings.TrimSpace(r.FormValue("sku"))
	description := strings.TrimSpace(r.FormValue("description"))
	sheet := strings.TrimSpace(r.FormValue("technicalSheet"))
	priceStr := strings.TrimSpace(r.FormValue("price"))

	if title == "" || sku == "" || description == "" || sheet == "" || priceStr == "" {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrMissingFields)
	}

	price, err := parsePrice(priceStr)
	if err != nil {
		return nil, err
	}

	return &ProductMetadata{
		Title:          title,
		SKU:            sku,
		Description:    description,
		TechnicalSheet: sheet,
		BasePrice:      price,
	}, nil
}

// parseImage читает единственное изображение товара из поля image.
func parseImage(files []*multipart.FileHeader, maxSize int64) (*usecase.ProductImage, error) {
	if len(files) == 0 {
		return nil, e.ErrNoImages
	}

	fh := files[0]
	data, mimeType, err := readFile(fh, maxSize)
	if err != nil {
		return nil, err
	}

	return usecase.NewProductImage(data, mimeType, int64(len(data)), fh.Filename), nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}
	if len(data) == 0 {
		return nil, "", e.ErrNoImages
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}

func decodeJSON(r *http.Request, dst any) error {
	const maxBody = 1 << 20

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest)
	}
	return nil
}

// pageParam возвращает номер страницы; пустое или некорректное значение даёт первую страницу.
func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

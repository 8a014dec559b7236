package http

import (
	"net/http"

	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// ProductHandler обслуживает админку товаров; все маршруты за RequireAdmin.
type ProductHandler struct {
	productUsecase usecase.ProductUC
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
	maxImageBytes  int64
}

func NewProductHandler(productUsecase usecase.ProductUC, catalogUsecase usecase.CatalogUC, logger logger.Logger, maxImageBytes int64) *ProductHandler {
	return &ProductHandler{
		productUsecase: productUsecase,
		catalogUsecase: catalogUsecase,
		logger:         logger,
		maxImageBytes:  maxImageBytes,
	}
}

// registerNewProduct
//
//	@Summary		Регистрация нового товара
//	@Description	Создает товар с изображением. Цена продажи = цена × 1.8
//	@Tags			admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			title			formData	string	true	"Название"
//	@Param			sku				formData	string	true	"SKU"
//	@Param			description		formData	string	true	"Описание"
//	@Param			technicalSheet	formData	string	true	"Технический лист"
//	@Param			price			formData	number	true	"Цена без наценки"
//	@Param			image			formData	file	true	"Изображение товара"
//	@Success		201				{object}	ProductResponse
//	@Failure		400				{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		401				{object}	ErrorResponse
//	@Failure		502				{object}	ErrorResponse
//	@Router			/admin/products [post]
func (p *ProductHandler) registerNewProduct(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 8 << 20

	r.Body = http.MaxBytesReader(w, r.Body, p.maxImageBytes+maxMemory)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	prMeta, err := parseProductForm(r)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	image, err := parseImage(r.MultipartForm.File["image"], p.maxImageBytes)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.RegisterNewProduct(r.Context(), usecase.NewAddNewProductReq(
		prMeta.Title, prMeta.SKU, prMeta.Description, prMeta.TechnicalSheet, prMeta.BasePrice, image,
	))
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(*product))
}

// productTable
//
//	@Summary		Таблица товаров
//	@Description	Отфильтрованная страница; номер страницы зажимается в допустимый диапазон
//	@Tags			admin
//	@Produce		json
//	@Param			q		query		string	false	"Строка поиска"
//	@Param			prevQ	query		string	false	"Запрос, по которому листалась таблица; без него q считается прежним"
//	@Param			page	query		int		false	"Номер страницы, с 1"
//	@Success		200		{object}	ProductTableResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/admin/products [get]
func (p *ProductHandler) productTable(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	query := values.Get("q")
	prevQuery := query
	if values.Has("prevQ") {
		prevQuery = values.Get("prevQ")
	}

	page, err := p.catalogUsecase.AdminTable(r.Context(), &usecase.ProductTableReq{
		Query:     query,
		PrevQuery: prevQuery,
		Page:      pageParam(r),
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductTableResponse(page))
}

// updateProduct
//
//	@Summary		Редактирование товара
//	@Description	Частичное обновление; цена сохраняется как введена
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"ID товара"
//	@Param			body	body		UpdateProductRequest	true	"Изменяемые поля"
//	@Success		200		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/admin/products/{id} [patch]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(*product))
}

// deleteProduct
//
//	@Summary	Удаление товара
//	@Tags		admin
//	@Param		id	path	string	true	"ID товара"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := p.productUsecase.DeleteProduct(r.Context(), id); err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	if s, err := adminSession(r.Context()); err == nil {
		p.logger.Infof("product %s deleted by %s", id, s.Email)
	}
	w.WriteHeader(http.StatusNoContent)
}

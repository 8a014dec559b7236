package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const streamKeepAlive = 15 * time.Second

type CatalogHandler struct {
	catalogUsecase usecase.CatalogUC
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUC, productUsecase usecase.ProductUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase, productUsecase: productUsecase, logger: logger}
}

// listCatalog
//
//	@Summary		Публичный каталог
//	@Description	Список товаров без пагинации, поиск по названию и SKU без учёта регистра
//	@Tags			catalog
//	@Produce		json
//	@Param			q	query		string	false	"Строка поиска"
//	@Success		200	{object}	CatalogResponse
//	@Failure		502	{object}	ErrorResponse
//	@Router			/catalog [get]
func (h *CatalogHandler) listCatalog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	products, err := h.catalogUsecase.PublicCatalog(r.Context(), query)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCatalogResponse(query, products))
}

// streamCatalog
//
//	@Summary		Живой каталог (SSE)
//	@Description	Отправляет событие catalog с полным отфильтрованным списком после каждого изменения
//	@Tags			catalog
//	@Produce		text/event-stream
//	@Param			q	query	string	false	"Строка поиска"
//	@Success		200
//	@Failure		502	{object}	ErrorResponse
//	@Router			/catalog/stream [get]
func (h *CatalogHandler) streamCatalog(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// Поток живёт дольше WriteTimeout сервера.
	_ = rc.SetWriteDeadline(time.Time{})

	query := r.URL.Query().Get("q")
	updates := make(chan []domain.Product, 1)

	unsubscribe, err := h.catalogUsecase.Subscribe(query, func(products []domain.Product) {
		// Непрочитанный снимок заменяется свежим.
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- products:
		default:
		}
	})
	if err != nil {
		h.logger.Warnf("catalog subscribe failed: %v", err)
		WriteError(w, err)
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Warnf("catalog stream: %v", err)
		return
	}

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			rc.Flush()
		case products := <-updates:
			data, err := json.Marshal(toCatalogResponse(query, products))
			if err != nil {
				h.logger.Errorf(err, "failed to encode catalog event")
				return
			}
			if _, err := fmt.Fprintf(w, "event: catalog\ndata: %s\n\n", data); err != nil {
				return
			}
			rc.Flush()
		}
	}
}

// getProduct
//
//	@Summary		Карточка товара
//	@Tags			catalog
//	@Produce		json
//	@Param			id	path		string	true	"ID товара"
//	@Success		200	{object}	ProductResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/products/{id} [get]
func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	product, err := h.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.Debugf("get product %q: %v", id, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(*product))
}

package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/e"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

type CartHandler struct {
	cartUsecase usecase.CartUC
	logger      logger.Logger
}

func NewCartHandler(cartUsecase usecase.CartUC, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUsecase: cartUsecase, logger: logger}
}

// viewCart
//
//	@Summary	Содержимое корзины
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	CartResponse
//	@Router		/cart [get]
func (h *CartHandler) viewCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.cartUsecase.View(r.Context(), cartSessionID(r.Context()))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

// addItem
//
//	@Summary		Добавить товар в корзину
//	@Description	Повторное добавление того же товара ничего не меняет
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddCartItemRequest	true	"Товар"
//	@Success		200		{object}	CartResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/cart/items [post]
func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.ProductID == "" {
		WriteError(w, e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest))
		return
	}

	view, err := h.cartUsecase.AddItem(r.Context(), cartSessionID(r.Context()), req.ProductID)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

// setQuantity
//
//	@Summary	Изменить количество
//	@Tags		cart
//	@Accept		json
//	@Produce	json
//	@Param		productId	path		string				true	"ID товара"
//	@Param		body		body		SetQuantityRequest	true	"Количество, не меньше 1"
//	@Success	200			{object}	CartResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/cart/items/{productId} [patch]
func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Quantity == nil {
		WriteError(w, e.Wrap(whereami.WhereAmI(), e.ErrInvalidQuantity))
		return
	}

	view, err := h.cartUsecase.SetQuantity(r.Context(), cartSessionID(r.Context()), chi.URLParam(r, "productId"), *req.Quantity)
	if err != nil {
		h.logger.Debugf("set quantity %d: %v", *req.Quantity, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

// removeItem
//
//	@Summary	Удалить товар из корзины
//	@Tags		cart
//	@Produce	json
//	@Param		productId	path		string	true	"ID товара"
//	@Success	200			{object}	CartResponse
//	@Router		/cart/items/{productId} [delete]
func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.cartUsecase.RemoveItem(r.Context(), cartSessionID(r.Context()), chi.URLParam(r, "productId"))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

// checkout
//
//	@Summary		Оформить заказ через мессенджер
//	@Description	Возвращает текст заказа и ссылку; с redirect=true отвечает 303 на ссылку
//	@Tags			cart
//	@Produce		json
//	@Param			redirect	query		bool	false	"Перенаправить на ссылку"
//	@Success		200			{object}	HandoffResponse
//	@Success		303
//	@Failure		409			{object}	ErrorResponse	"Корзина пуста"
//	@Router			/cart/checkout [post]
func (h *CartHandler) checkout(w http.ResponseWriter, r *http.Request) {
	handoff, err := h.cartUsecase.Checkout(r.Context(), cartSessionID(r.Context()))
	if err != nil {
		h.logger.Debugf("checkout: %v", err)
		WriteError(w, err)
		return
	}

	redirect, _ := strconv.ParseBool(r.URL.Query().Get("redirect"))
	if redirect && handoff.Initiated {
		http.Redirect(w, r, handoff.URL, http.StatusSeeOther)
		return
	}

	WriteSuccess(w, http.StatusOK, toHandoffResponse(handoff))
}

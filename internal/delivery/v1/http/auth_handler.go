package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DRSN-tech/insumos-backend/internal/domain"
	"github.com/DRSN-tech/insumos-backend/internal/usecase"
	"github.com/DRSN-tech/insumos-backend/pkg/logger"
)

type AuthHandler struct {
	authUsecase  usecase.AuthUC
	logger       logger.Logger
	secureCookie bool
}

func NewAuthHandler(authUsecase usecase.AuthUC, logger logger.Logger, secureCookie bool) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, logger: logger, secureCookie: secureCookie}
}

// login
//
//	@Summary		Вход администратора
//	@Description	Устанавливает cookie admin_session
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Email и пароль"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/auth/login [post]
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authUsecase.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Infof("sign in failed for %q: %v", req.Email, err)
		WriteError(w, err)
		return
	}

	setSessionCookie(w, session, h.secureCookie)
	WriteSuccess(w, http.StatusOK, toSessionResponse(session))
}

// logout
//
//	@Summary	Выход администратора
//	@Tags		auth
//	@Success	204
//	@Router		/auth/logout [post]
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.authUsecase.SignOut(r.Context(), sessionToken(r))
	clearSessionCookie(w, h.secureCookie)
	w.WriteHeader(http.StatusNoContent)
}

// me
//
//	@Summary	Текущий администратор
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	SessionResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/auth/me [get]
func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	session, err := h.authUsecase.Current(r.Context(), sessionToken(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSessionResponse(session))
}

// streamSession
//
//	@Summary		Состояние сессии (SSE)
//	@Description	Событие auth с текущей сессией (или null), затем null при выходе или истечении; после null поток закрывается
//	@Tags			auth
//	@Produce		text/event-stream
//	@Success		200
//	@Router			/auth/stream [get]
func (h *AuthHandler) streamSession(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	// Колбэк не блокируется: событий не больше двух.
	changes := make(chan *domain.Session, 2)
	unsubscribe := h.authUsecase.OnAuthChange(r.Context(), sessionToken(r), func(session *domain.Session) {
		select {
		case changes <- session:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

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
		case session := <-changes:
			var payload *SessionResponse
			if session != nil {
				resp := toSessionResponse(session)
				payload = &resp
			}

			data, err := json.Marshal(payload)
			if err != nil {
				h.logger.Errorf(err, "failed to encode auth event")
				return
			}
			if _, err := fmt.Fprintf(w, "event: auth\ndata: %s\n\n", data); err != nil {
				return
			}
			rc.Flush()

			if session == nil {
				return
			}
		}
	}
}

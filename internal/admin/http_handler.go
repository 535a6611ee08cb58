package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"bookcollect/internal/httpx"
)

type HTTPHandler struct {
	service      *Service
	cookieSecure bool
}

func NewHTTPHandler(service *Service, cookieSecure bool) *HTTPHandler {
	return &HTTPHandler{service: service, cookieSecure: cookieSecure}
}

type LoginReq struct {
	Login    string `json:"login" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /admin/login. Accepts JSON or a urlencoded form.
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Ошибка формы", nil)
			return
		}
	} else {
		if err := httpx.ParseForm(r, 1<<20); err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Ошибка формы", nil)
			return
		}
		req.Login = r.FormValue("login")
		req.Password = r.FormValue("password")
	}
	req.Login = strings.TrimSpace(req.Login)

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Заполните все поля", validationErrors)
		return
	}

	sess, err := h.service.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			slog.Warn("admin login failed", "login", req.Login, "ip", httpx.ClientIP(r, false), "forwarded_for", r.Header.Get("X-Forwarded-For"))
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Неверный логин или пароль", nil)
			return
		}
		slog.Error("admin login error", "request_id", httpx.RequestIDFrom(r), "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Ошибка БД", nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Info("admin logged in", "admin_id", sess.AdminID)
	httpx.JSONSuccess(w, map[string]any{
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt.UTC().Format(time.RFC3339),
		"message":    "Вход выполнен",
	})
}

// Logout handles POST /admin/logout
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := httpx.BearerOrCookieToken(r)
	if err := h.service.Logout(r.Context(), token); err != nil && !errors.Is(err, ErrUnauthorized) {
		slog.Error("admin logout error", "request_id", httpx.RequestIDFrom(r), "error", err)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Ошибка выхода", nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Info("admin logged out", "admin_id", httpx.AdminIDFrom(r))
	httpx.JSONSuccess(w, map[string]any{"message": "Выход выполнен"})
}

package httpx

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"request_id", RequestIDFrom(r),
					"error", err,
					"stack", string(debug.Stack()),
				)

				var wroteHeader bool
				if rw, ok := w.(*responseWriter); ok {
					wroteHeader = rw.wroteHeader()
				}
				if !wroteHeader {
					JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Внутренняя ошибка сервера", nil)
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}

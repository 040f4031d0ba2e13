package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
)

// Error maps an application error to an HTTP status and a short JSON
// body. Internal errors are logged with full detail server-side; the
// client only ever sees the generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	msg := apperr.MessageOf(err)
	if kind == apperr.KindInternal {
		slog.ErrorContext(r.Context(), "internal error", "err", err, "url", r.URL.String())
		msg = "internal error"
	}
	JSON(w, status, map[string]string{"error": msg})
}

func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindUnauthorized:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

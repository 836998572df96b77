package rest

import (
	"log/slog"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kbmproject/kbm-backend/internal/transport/problem"
)

// httpStatus maps a directory service status code to the gateway response code.
func httpStatus(code codes.Code) int {
	switch code {
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.InvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// handleError writes err as a problem response. Status errors from the
// directory service keep their message; anything else becomes a 500.
func (h *Gateway) handleError(w http.ResponseWriter, r *http.Request, err error) {
	st, ok := status.FromError(err)
	if !ok {
		h.log.ErrorContext(r.Context(), "unexpected error",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		problem.Error(w, r, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	code := httpStatus(st.Code())
	if code == http.StatusBadGateway {
		h.log.ErrorContext(r.Context(), "directory call failed",
			slog.String("path", r.URL.Path),
			slog.String("code", st.Code().String()),
			slog.String("error", st.Message()))
	}
	problem.Error(w, r, code, st.Message())
}

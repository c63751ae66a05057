package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mealdash/order-service/internal/domain/order"
)

// Stable error codes for client branching.
const (
	codeValidation    = "VALIDATION_ERROR"
	codeNotFound      = "ORDER_NOT_FOUND"
	codeInvalidStatus = "INVALID_ORDER_STATUS"
	codeBadRequest    = "BAD_REQUEST"
	codeInternal      = "INTERNAL_ERROR"
)

// writeError maps a service error onto the HTTP taxonomy: validation and
// illegal transitions are 422, missing orders 404, everything else 500 with a
// generic message so storage details never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		valErr    *order.ValidationError
		nfErr     *order.NotFoundError
		statusErr *order.InvalidStatusError
	)
	switch {
	case errors.As(err, &valErr):
		writeErrorResponse(w, r, http.StatusUnprocessableEntity, codeValidation, valErr.Error())
	case errors.As(err, &nfErr):
		writeErrorResponse(w, r, http.StatusNotFound, codeNotFound, nfErr.Error())
	case errors.As(err, &statusErr):
		writeErrorResponse(w, r, http.StatusUnprocessableEntity, codeInvalidStatus, statusErr.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeErrorResponse(w, r, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeErrorResponse(w, r, http.StatusBadRequest, codeBadRequest, msg)
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, r, status, ErrorResponse{
		Code:       code,
		Message:    msg,
		StatusCode: status,
	})
}

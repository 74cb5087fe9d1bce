package booking

import (
	"errors"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"

	"trekbooking/internal/api"
	"trekbooking/internal/payment"
)

func validationStatus(code string) int {
	switch code {
	case "BOOKING_LOCKED":
		return http.StatusConflict
	case "PARTICIPANT_COUNT_MISMATCH", "PARTIAL_BALANCE_INVALID":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// writeLifecycleError maps errors returned from a lifecycle transaction onto the API envelope.
func writeLifecycleError(w http.ResponseWriter, action string, err error) {
	var (
		terr TransitionError
		verr ValidationError
		perr payment.ValidationError
	)
	switch {
	case errors.As(err, &terr):
		api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION", terr.Error())
	case errors.Is(err, ErrStatusChanged):
		api.WriteError(w, http.StatusConflict, "STATUS_CHANGED", err.Error())
	case errors.Is(err, ErrPaymentNotApplicable):
		api.WriteError(w, http.StatusConflict, "PAYMENT_NOT_APPLICABLE", err.Error())
	case errors.As(err, &verr):
		api.WriteError(w, validationStatus(verr.Code), verr.Code, verr.Message)
	case errors.As(err, &perr):
		api.WriteError(w, http.StatusBadRequest, perr.Code, perr.Message)
	case errors.Is(err, pgx.ErrNoRows):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
	default:
		log.Printf("[booking] action=%s err=%v", action, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

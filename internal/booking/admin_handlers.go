package booking

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"trekbooking/internal/adminaction"
	"trekbooking/internal/api"
	"trekbooking/internal/audit"
	"trekbooking/internal/events"
	"trekbooking/pkg/db"
)

func (h Handlers) AdminList(w http.ResponseWriter, r *http.Request) {
	status, err := parseStatusFilter(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status filter")
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	list, err := h.Repo.ListAll(r.Context(), Filter{Status: status, Search: q.Get("q"), Limit: limit, Offset: offset})
	if err != nil {
		writeLifecycleError(w, "admin_list", err)
		return
	}
	counts, err := h.Repo.StatusCounts(r.Context(), "")
	if err != nil {
		writeLifecycleError(w, "admin_list", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": itemsOf(list), "counts": counts})
}

func (h Handlers) AdminGet(w http.ResponseWriter, r *http.Request) {
	b, ok := h.load(w, r)
	if !ok {
		return
	}
	pays, err := h.Payments.ListByBooking(r.Context(), b.ID)
	if err != nil {
		writeLifecycleError(w, "admin_get", err)
		return
	}
	evs, err := h.Events.ListByBooking(r.Context(), b.ID)
	if err != nil {
		writeLifecycleError(w, "admin_get", err)
		return
	}
	item := itemOf(*b)
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"booking":  item.Booking,
		"view":     item.View,
		"payments": pays,
		"events":   evs,
	})
}

// adminActions lists the admin_actions rows an applied patch produces.
func adminActions(before, after Booking, p AdminPatch) []adminaction.ActionType {
	var out []adminaction.ActionType
	if before.Status != after.Status {
		out = append(out, adminaction.ActionSetStatus)
	}
	if p.PaymentStatus != nil && before.PaymentStatus != after.PaymentStatus {
		out = append(out, adminaction.ActionSetPaymentStatus)
	}
	if p.TotalPrice != nil && !before.TotalPrice.Equal(after.TotalPrice) {
		out = append(out, adminaction.ActionAdjustPrice)
	}
	if p.AdminRemarks != nil && before.AdminRemarks != after.AdminRemarks {
		out = append(out, adminaction.ActionAddRemarks)
	}
	return out
}

func patchMetadata(before, after Booking) map[string]any {
	return map[string]any{
		"from":              before.Status,
		"to":                after.Status,
		"paymentStatusFrom": before.PaymentStatus,
		"paymentStatusTo":   after.PaymentStatus,
		"totalPriceFrom":    before.TotalPrice.StringFixed(2),
		"totalPriceTo":      after.TotalPrice.StringFixed(2),
	}
}

func (h Handlers) AdminPatch(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	bookingID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(bookingID); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return
	}

	var p AdminPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if p.Empty() {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "nothing to update")
		return
	}

	var (
		updated Booking
		tr      Transition
	)
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		before, err := GetForUpdate(r.Context(), tx, bookingID)
		if err != nil {
			return err
		}
		after, t, err := ApplyAdminPatch(*before, p)
		if err != nil {
			return err
		}
		actions := adminActions(*before, after, p)
		if len(actions) == 0 {
			updated, tr = after, t
			return nil
		}
		if after.UpdatedAt, err = UpdateLifecycle(r.Context(), tx, after); err != nil {
			return err
		}

		actor := "admin"
		meta := patchMetadata(*before, after)
		for _, a := range actions {
			if err := adminaction.Insert(r.Context(), tx, after.ID, a, after.AdminRemarks, actor, meta); err != nil {
				return err
			}
		}
		if err := audit.Insert(r.Context(), tx, id.UserID.String(), &after.ID, audit.ActionAdminBookingEdit, actor, meta); err != nil {
			return err
		}
		if t.Changed() {
			summary := fmt.Sprintf("Status changed from %s to %s", t.From, t.To)
			if err := events.Insert(r.Context(), tx, after.ID, events.TypeStatusChanged, summary, actor, after.UpdatedAt, meta); err != nil {
				return err
			}
		} else {
			if err := events.Insert(r.Context(), tx, after.ID, events.TypeAdminEdit, "Booking edited by admin", actor, after.UpdatedAt, meta); err != nil {
				return err
			}
		}
		updated, tr = after, t
		return nil
	})
	if err != nil {
		writeLifecycleError(w, "admin_patch", err)
		return
	}

	if tr.Changed() {
		log.Printf("[booking] action=admin_patch id=%s from=%s to=%s admin=%s", updated.ID, tr.From, tr.To, id.UserID)
		h.notifyStatus(updated)
	}
	api.WriteJSON(w, http.StatusOK, itemOf(updated))
}

func (h Handlers) AdminEvents(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(bookingID); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return
	}
	evs, err := h.Events.ListByBooking(r.Context(), bookingID)
	if err != nil {
		writeLifecycleError(w, "admin_events", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": evs})
}

func (h Handlers) AdminExport(w http.ResponseWriter, r *http.Request) {
	status, err := parseStatusFilter(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status filter")
		return
	}
	list, err := h.Repo.ListAll(r.Context(), Filter{Status: status, Search: r.URL.Query().Get("q"), Limit: 500})
	if err != nil {
		writeLifecycleError(w, "admin_export", err)
		return
	}

	f, err := ExportWorkbook(list)
	if err != nil {
		writeLifecycleError(w, "admin_export", err)
		return
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		writeLifecycleError(w, "admin_export", err)
		return
	}

	filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nexusmarket/backend/api/middleware"
	"github.com/nexusmarket/backend/api/responses"
	"github.com/nexusmarket/backend/api/validators"
	"github.com/nexusmarket/backend/internal/payments"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
	"github.com/nexusmarket/backend/pkg/logger"
)

type createSessionRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	OriginURL string `json:"origin_url,omitempty" validate:"omitempty,url"`
}

// webhookEvent is the gateway callback envelope. The type selects the
// events that settle; the session id is the only object field read.
type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// CreatePaymentSession opens a hosted checkout session for a pending order.
func CreatePaymentSession(coord payments.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if coord == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment coordinator unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := coord.OpenSession(r.Context(), userID, payload.OrderID, payload.OriginURL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// PaymentSessionStatus polls the gateway and settles the session when paid.
func PaymentSessionStatus(coord payments.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if coord == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment coordinator unavailable"))
			return
		}

		result, err := coord.ConfirmPayment(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// PaymentWebhook receives gateway callbacks. It always acknowledges with
// {"received": true} so the gateway never retries into a settled session.
func PaymentWebhook(coord payments.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ack := map[string]bool{"received": true}

		var event webhookEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			if logg != nil {
				logg.Warn(logg.WithFields(r.Context(), map[string]any{"error": err.Error()}), "webhook payload unreadable")
			}
			responses.WriteRaw(w, http.StatusOK, ack)
			return
		}

		if event.Type != payments.EventCheckoutCompleted {
			responses.WriteRaw(w, http.StatusOK, ack)
			return
		}

		sessionID := event.Data.Object.ID
		if coord == nil || sessionID == "" {
			responses.WriteRaw(w, http.StatusOK, ack)
			return
		}

		if err := coord.HandleCompletedSession(r.Context(), sessionID); err != nil {
			if logg != nil {
				ctx := logg.WithFields(r.Context(), map[string]any{"session_id": sessionID})
				logg.Error(ctx, "webhook settlement failed", err)
			}
		}

		responses.WriteRaw(w, http.StatusOK, ack)
	}
}

package controllers

import (
	"net/http"

	"github.com/nexusmarket/backend/api/responses"
	"github.com/nexusmarket/backend/api/validators"
	newslettersvc "github.com/nexusmarket/backend/internal/newsletter"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
	"github.com/nexusmarket/backend/pkg/logger"
)

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NewsletterSubscribe records an email address. Resubscribing is a no-op.
func NewsletterSubscribe(svc newslettersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "newsletter service unavailable"))
			return
		}

		var payload subscribeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Subscribe(r.Context(), payload.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "subscribed"})
	}
}

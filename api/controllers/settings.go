package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rakapradana/kasirpoint-backend/api/responses"
	"github.com/rakapradana/kasirpoint-backend/api/validators"
	"github.com/rakapradana/kasirpoint-backend/internal/settings"
	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	pkgerrors "github.com/rakapradana/kasirpoint-backend/pkg/errors"
	"github.com/rakapradana/kasirpoint-backend/pkg/logger"
)

type pointRulesResponse struct {
	Enabled         bool   `json:"enabled"`
	BaseAmountCents int64  `json:"base_amount_cents"`
	Multiplier      string `json:"multiplier"`
}

type pointRulesRequest struct {
	Enabled         bool   `json:"enabled"`
	BaseAmountCents int64  `json:"base_amount_cents" validate:"required,gt=0"`
	Multiplier      string `json:"multiplier" validate:"required"`
}

// PointRulesGet returns the active point accrual configuration.
func PointRulesGet(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings unavailable"))
			return
		}

		rules, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pointRulesResponse{
			Enabled:         rules.Enabled,
			BaseAmountCents: rules.BaseAmountCents,
			Multiplier:      rules.Multiplier.String(),
		})
	}
}

// PointRulesUpdate replaces the point accrual configuration.
func PointRulesUpdate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings unavailable"))
			return
		}

		var payload pointRulesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		multiplier, err := decimal.NewFromString(payload.Multiplier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multiplier"))
			return
		}

		rules := &models.PointRuleSetting{
			Enabled:         payload.Enabled,
			BaseAmountCents: payload.BaseAmountCents,
			Multiplier:      multiplier,
		}
		if err := svc.Update(r.Context(), rules); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid point rules"))
			return
		}

		responses.WriteSuccess(w, pointRulesResponse{
			Enabled:         rules.Enabled,
			BaseAmountCents: rules.BaseAmountCents,
			Multiplier:      rules.Multiplier.String(),
		})
	}
}

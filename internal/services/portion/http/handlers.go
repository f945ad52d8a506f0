// Package http provides http transport for portion
package http

import (
	stdhttp "net/http"

	"platewise/internal/modkit/httpkit"
	"platewise/internal/services/portion/domain"
	svc "platewise/internal/services/portion/service"
)

// Register mounts the router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.EstimateInput](r, "/estimate", h.estimate)
	httpkit.PostJSON[domain.BatchInput](r, "/batch", h.batch)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /portion/estimate Portion estimate
// @Summary Estimate grams for one detected item
// @Tags portion
// @Accept json
// @Produce json
// @Param payload body domain.EstimateInput true "Item"
// @Success 200 {object} domain.EstimateOutput "ok"
// @Failure 400 {object} httpkit.Envelope "validation"
// @Router /portion/estimate [post]
func (h *handlers) estimate(r *stdhttp.Request, in domain.EstimateInput) (any, error) {
	return h.svc.Estimate(r.Context(), in)
}

// swagger:route POST /portion/batch Portion batch
// @Summary Estimate grams for a plate of items, in input order
// @Tags portion
// @Accept json
// @Produce json
// @Param payload body domain.BatchInput true "Items"
// @Success 200 {object} domain.BatchOutput "ok"
// @Failure 400 {object} httpkit.Envelope "validation"
// @Router /portion/batch [post]
func (h *handlers) batch(r *stdhttp.Request, in domain.BatchInput) (any, error) {
	return h.svc.Batch(r.Context(), in)
}

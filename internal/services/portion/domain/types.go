// Package domain holds the portion API contracts
package domain

import (
	"context"

	"platewise/internal/core/portion"
)

// EstimateInput is one detected food item
type EstimateInput struct {
	Name      string        `json:"name" validate:"required,max=120"`
	Category  string        `json:"category,omitempty" validate:"omitempty,max=40"`
	Hints     string        `json:"hints,omitempty" validate:"omitempty,max=240"`
	BBox      *portion.BBox `json:"bbox,omitempty"`
	MaskArea  float64       `json:"mask_area,omitempty" validate:"gte=0"`
	PlateArea float64       `json:"plate_area,omitempty" validate:"gte=0"`
}

// Inputs maps the request onto the estimator inputs
func (in EstimateInput) Inputs() portion.Inputs {
	return portion.Inputs{Name: in.Name, Category: in.Category, Hints: in.Hints, BBox: in.BBox, MaskArea: in.MaskArea}
}

// EstimateOutput echoes the name next to the estimate
type EstimateOutput struct {
	Name string `json:"name"`
	portion.Result
}

// BatchInput is up to CORE_PORTION_BATCH_MAX items
type BatchInput struct {
	Items []EstimateInput `json:"items" validate:"required,min=1,dive"`
}

// BatchOutput keeps the input order
type BatchOutput struct {
	Items []EstimateOutput `json:"items"`
}

// ServicePort is the portion use case surface
type ServicePort interface {
	Estimate(ctx context.Context, in EstimateInput) (EstimateOutput, error)
	Batch(ctx context.Context, in BatchInput) (BatchOutput, error)
}

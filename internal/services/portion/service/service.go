// Package service estimates portions for single items and bounded batches
package service

import (
	"context"

	"platewise/internal/core/portion"
	perr "platewise/internal/platform/errors"
	"platewise/internal/services/portion/domain"

	"golang.org/x/sync/errgroup"
)

// Service is the public service port
type Service interface{ domain.ServicePort }

// Options control batch fan-out
type Options struct {
	Workers  int
	MaxBatch int
}

// Svc implements the service port
type Svc struct {
	scaler   *portion.Scaler
	workers  int
	maxBatch int
}

// New constructs the service; Workers defaults to 4 and MaxBatch to 64
func New(scaler *portion.Scaler, opt Options) *Svc {
	if scaler == nil {
		panic("portion.Service requires a non nil Scaler")
	}
	s := &Svc{scaler: scaler, workers: opt.Workers, maxBatch: opt.MaxBatch}
	if s.workers <= 0 {
		s.workers = 4
	}
	if s.maxBatch <= 0 {
		s.maxBatch = 64
	}
	return s
}

// Estimate runs the scaler for one item
func (s *Svc) Estimate(_ context.Context, in domain.EstimateInput) (domain.EstimateOutput, error) {
	return domain.EstimateOutput{Name: in.Name, Result: s.scaler.Estimate(in.Inputs(), in.PlateArea)}, nil
}

// Batch estimates every item over at most Workers goroutines, keeping input order
func (s *Svc) Batch(ctx context.Context, in domain.BatchInput) (domain.BatchOutput, error) {
	if len(in.Items) == 0 {
		return domain.BatchOutput{}, perr.WithField(perr.Validationf("items must not be empty"), "items")
	}
	if len(in.Items) > s.maxBatch {
		return domain.BatchOutput{}, perr.WithField(perr.Validationf("items must hold at most %d entries", s.maxBatch), "items")
	}

	out := make([]domain.EstimateOutput, len(in.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, item := range in.Items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = domain.EstimateOutput{Name: item.Name, Result: s.scaler.Estimate(item.Inputs(), item.PlateArea)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.BatchOutput{}, perr.Wrap(err, perr.ErrorCodeTimeout, "portion batch canceled")
	}
	return domain.BatchOutput{Items: out}, nil
}

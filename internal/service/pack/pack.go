// internal/service/pack/pack.go
package pack

import (
	"context"
	"database/sql"

	"license-service/internal/domain/pack"
	"license-service/internal/domain/subscription"
	xerrors "license-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// PackService manages the subscription pack catalog.
type PackService struct {
	packRepo         pack.Repository
	subscriptionRepo subscription.Repository
	logger           *zap.Logger
}

func NewPackService(packRepo pack.Repository, subscriptionRepo subscription.Repository, logger *zap.Logger) *PackService {
	return &PackService{
		packRepo:         packRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// Create adds a pack to the catalog. Fails Conflict when the SKU is taken.
func (s *PackService) Create(ctx context.Context, req pack.CreateRequest) (*pack.Pack, error) {
	exists, err := s.packRepo.ExistsBySKU(ctx, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, xerrors.ErrConflict
	}

	p := &pack.Pack{
		Name:           req.Name,
		Description:    sql.NullString{String: req.Description, Valid: req.Description != ""},
		SKU:            req.SKU,
		Price:          req.Price,
		ValidityMonths: req.ValidityMonths,
	}
	if err := s.packRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("subscription pack created", zap.Int64("pack_id", p.ID), zap.String("sku", p.SKU))
	return p, nil
}

func (s *PackService) Get(ctx context.Context, id int64) (*pack.Pack, error) {
	return s.packRepo.FindByID(ctx, id)
}

// Update applies a partial update; SKU changes are checked for uniqueness.
func (s *PackService) Update(ctx context.Context, id int64, req pack.UpdateRequest) (*pack.Pack, error) {
	p, err := s.packRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil && *req.SKU != p.SKU {
		exists, err := s.packRepo.ExistsBySKU(ctx, *req.SKU)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, xerrors.ErrConflict
		}
		p.SKU = *req.SKU
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.ValidityMonths != nil {
		p.ValidityMonths = *req.ValidityMonths
	}

	if err := s.packRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete soft-deletes a pack. Refused while approved/active subscriptions
// still reference it.
func (s *PackService) Delete(ctx context.Context, id int64) error {
	if _, err := s.packRepo.FindByID(ctx, id); err != nil {
		return err
	}

	open, err := s.subscriptionRepo.CountOpenByPack(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return xerrors.ErrConflict
	}

	if err := s.packRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("subscription pack deleted", zap.Int64("pack_id", id))
	return nil
}

func (s *PackService) List(ctx context.Context, f pack.ListFilters) ([]pack.Pack, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}
	return s.packRepo.List(ctx, f)
}

// ListActive returns the packs customers may request.
func (s *PackService) ListActive(ctx context.Context) ([]pack.Pack, error) {
	return s.packRepo.ListActive(ctx)
}

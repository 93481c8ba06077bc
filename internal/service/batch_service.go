package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/receptia/scheduling-api/internal/models"
	appErrors "github.com/receptia/scheduling-api/pkg/errors"
)

type batchRepository interface {
	UpdateStatusMany(ctx context.Context, businessID string, ids []string, status models.AppointmentStatus) (int64, error)
	DeleteMany(ctx context.Context, businessID string, ids []string) (int64, error)
}

// BatchService applies one action to a selection of appointments. Ids outside
// the caller's business are silently skipped by the ownership filter in the
// statement itself, so the returned count can be lower than the request size.
type BatchService struct {
	repo      batchRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBatchService constructs the service.
func NewBatchService(repo batchRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// BatchStatusRequest marks every selected appointment with one status.
type BatchStatusRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1"`
	Status string   `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

// BatchDeleteRequest removes every selected appointment.
type BatchDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// BatchResult reports how many rows the action touched.
type BatchResult struct {
	Requested int   `json:"requested"`
	Affected  int64 `json:"affected"`
}

// ApplyStatus sets one status across the selection.
func (s *BatchService) ApplyStatus(ctx context.Context, businessID string, req BatchStatusRequest) (*BatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch status payload")
	}

	selection := models.NewSelection(req.IDs...)
	if selection.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "selection is empty")
	}

	affected, err := s.repo.UpdateStatusMany(ctx, businessID, selection.IDs(), models.AppointmentStatus(req.Status))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment statuses")
	}

	s.logger.Info("batch status applied",
		zap.String("business_id", businessID),
		zap.String("status", req.Status),
		zap.Int("requested", selection.Len()),
		zap.Int64("affected", affected))
	if s.metrics != nil {
		s.metrics.RecordBatchMutation("status")
	}
	s.invalidateGrids(ctx, businessID)

	return &BatchResult{Requested: selection.Len(), Affected: affected}, nil
}

// Delete removes the selection.
func (s *BatchService) Delete(ctx context.Context, businessID string, req BatchDeleteRequest) (*BatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch delete payload")
	}

	selection := models.NewSelection(req.IDs...)
	if selection.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "selection is empty")
	}

	affected, err := s.repo.DeleteMany(ctx, businessID, selection.IDs())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete appointments")
	}

	s.logger.Info("batch delete applied",
		zap.String("business_id", businessID),
		zap.Int("requested", selection.Len()),
		zap.Int64("affected", affected))
	if s.metrics != nil {
		s.metrics.RecordBatchMutation("delete")
	}
	s.invalidateGrids(ctx, businessID)

	return &BatchResult{Requested: selection.Len(), Affected: affected}, nil
}

func (s *BatchService) invalidateGrids(ctx context.Context, businessID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("grid:%s:*", businessID))
}

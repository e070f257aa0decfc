// internal/service/grievance_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gurkanbulca/grievanceportal/internal/models"
	"github.com/gurkanbulca/grievanceportal/internal/repository"
	"github.com/gurkanbulca/grievanceportal/pkg/metrics"
)

// GrievanceStore is the persistence the service needs.
type GrievanceStore interface {
	Create(ctx context.Context, in *repository.GrievanceInput) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Grievance, error)
	List(ctx context.Context) ([]*models.Grievance, error)
	UpdateStatus(ctx context.Context, id int64, status models.Status, notes string) (*models.Grievance, error)
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
}

// CreateGrievanceRequest is the wife's submission after form decoding.
type CreateGrievanceRequest struct {
	GrievanceType     string `json:"grievance_type" validate:"required,max=100"`
	Priority          string `json:"priority" validate:"required,grievance_priority"`
	Description       string `json:"description" validate:"required,max=5000"`
	AdditionalContext string `json:"additional_context" validate:"max=5000"`
	SubmittedBy       string `json:"submitted_by" validate:"required"`
}

// UpdateGrievanceRequest is the husband's response to one grievance.
type UpdateGrievanceRequest struct {
	ID     int64  `json:"id" validate:"required,gt=0"`
	Status string `json:"status" validate:"required,grievance_status"`
	Notes  string `json:"notes" validate:"max=5000"`
}

type GrievanceService struct {
	store    GrievanceStore
	notifier *Notifier
	validate *validator.Validate
	metrics  *metrics.Collector
	logger   *zap.Logger
}

func NewGrievanceService(store GrievanceStore, notifier *Notifier, m *metrics.Collector, logger *zap.Logger) *GrievanceService {
	return &GrievanceService{
		store:    store,
		notifier: notifier,
		validate: newValidator(),
		metrics:  m,
		logger:   logger.With(zap.String("component", "grievance_service")),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("grievance_priority", func(fl validator.FieldLevel) bool {
		return models.Priority(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("grievance_status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
	return v
}

// validationError converts the first validator failure into a ValidationError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	label := strings.ReplaceAll(fe.Field(), "_", " ")

	switch fe.Tag() {
	case "required":
		return newValidationError(fe.Field(), fmt.Sprintf("%s is required", label))
	case "max":
		return newValidationError(fe.Field(), fmt.Sprintf("%s must be at most %s characters", label, fe.Param()))
	case "grievance_priority":
		return newValidationError(fe.Field(), fmt.Sprintf("invalid priority %q", fe.Value()))
	case "grievance_status":
		return newValidationError(fe.Field(), fmt.Sprintf("invalid status %q", fe.Value()))
	default:
		return newValidationError(fe.Field(), fmt.Sprintf("%s is invalid", label))
	}
}

// Create validates and stores a new grievance in status Open.
func (s *GrievanceService) Create(ctx context.Context, req *CreateGrievanceRequest) (int64, error) {
	in := *req
	in.GrievanceType = strings.TrimSpace(in.GrievanceType)
	in.Priority = strings.TrimSpace(in.Priority)
	in.Description = strings.TrimSpace(in.Description)
	in.AdditionalContext = strings.TrimSpace(in.AdditionalContext)
	in.SubmittedBy = strings.TrimSpace(in.SubmittedBy)

	if err := s.validate.Struct(&in); err != nil {
		return 0, validationError(err)
	}

	id, err := s.store.Create(ctx, &repository.GrievanceInput{
		GrievanceType:     in.GrievanceType,
		Priority:          models.Priority(in.Priority),
		Description:       in.Description,
		AdditionalContext: in.AdditionalContext,
		SubmittedBy:       in.SubmittedBy,
	})
	if err != nil {
		return 0, &StorageError{Op: "create", Err: err}
	}

	s.metrics.RecordSubmission()
	s.logger.Info("Grievance created",
		zap.Int64("grievance_id", id),
		zap.String("priority", in.Priority),
		zap.String("submitted_by", in.SubmittedBy))
	return id, nil
}

// ListAll returns every grievance, most severe first. Storage failures are
// logged and yield an empty list.
func (s *GrievanceService) ListAll(ctx context.Context) []*models.Grievance {
	grievances, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list grievances", zap.Error(&StorageError{Op: "list", Err: err}))
		return []*models.Grievance{}
	}
	return grievances
}

// Get returns one grievance.
func (s *GrievanceService) Get(ctx context.Context, id int64) (*models.Grievance, error) {
	g, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newValidationError("id", fmt.Sprintf("grievance %d does not exist", id))
	}
	if err != nil {
		return nil, &StorageError{Op: "get", Err: err}
	}
	return g, nil
}

// UpdateStatus applies the husband's status and notes to a grievance.
func (s *GrievanceService) UpdateStatus(ctx context.Context, req *UpdateGrievanceRequest) (*models.Grievance, error) {
	in := *req
	in.Status = strings.TrimSpace(in.Status)
	in.Notes = strings.TrimSpace(in.Notes)

	if err := s.validate.Struct(&in); err != nil {
		return nil, validationError(err)
	}

	g, err := s.store.UpdateStatus(ctx, in.ID, models.Status(in.Status), in.Notes)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newValidationError("id", fmt.Sprintf("grievance %d does not exist", in.ID))
	}
	if err != nil {
		return nil, &StorageError{Op: "update", Err: err}
	}

	s.metrics.RecordUpdate(in.Status)
	s.logger.Info("Grievance updated",
		zap.Int64("grievance_id", g.ID),
		zap.String("status", in.Status),
		zap.Bool("resolved", g.DateResolved.Valid))
	return g, nil
}

// Stats counts grievances per status, zero everywhere on storage failure.
func (s *GrievanceService) Stats(ctx context.Context) models.StatusCounts {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count grievances", zap.Error(&StorageError{Op: "count", Err: err}))
		counts = make(models.StatusCounts, len(models.Statuses))
		for _, st := range models.Statuses {
			counts[st] = 0
		}
	}
	return counts
}

// SubmitGrievance stores a grievance and then notifies the husband. The
// outcome of the notifications never affects whether the grievance was stored.
func (s *GrievanceService) SubmitGrievance(ctx context.Context, req *CreateGrievanceRequest) (*NotificationOutcome, error) {
	id, err := s.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	// Notify with the stored row so the message matches what the portal shows.
	var summary *GrievanceSummary
	if g, err := s.store.GetByID(ctx, id); err == nil {
		summary = summaryOf(g)
	} else {
		s.logger.Warn("Failed to reload grievance for notification",
			zap.Int64("grievance_id", id),
			zap.Error(&StorageError{Op: "get", Err: err}))
		summary = &GrievanceSummary{
			ID:                id,
			GrievanceType:     strings.TrimSpace(req.GrievanceType),
			Priority:          strings.TrimSpace(req.Priority),
			Description:       strings.TrimSpace(req.Description),
			AdditionalContext: strings.TrimSpace(req.AdditionalContext),
			SubmittedBy:       strings.TrimSpace(req.SubmittedBy),
			SubmittedAt:       time.Now().UTC(),
		}
	}

	outcome := s.notifier.NotifyNewGrievance(ctx, summary)
	outcome.GrievanceID = id
	return outcome, nil
}

func summaryOf(g *models.Grievance) *GrievanceSummary {
	return &GrievanceSummary{
		ID:                g.ID,
		GrievanceType:     g.GrievanceType,
		Priority:          string(g.Priority),
		Description:       g.Description,
		AdditionalContext: g.Context(),
		SubmittedBy:       g.SubmittedBy,
		SubmittedAt:       g.DateSubmitted,
	}
}

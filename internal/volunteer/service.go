package volunteer

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/helpmesh/helpmesh/internal/domain"
	"github.com/helpmesh/helpmesh/internal/observability"
)

// ApplicationStore is the durable application record store.
type ApplicationStore interface {
	Insert(ctx context.Context, app *domain.Application) (*domain.Application, error)
	FindByUser(ctx context.Context, userID string) ([]*domain.Application, error)
	List(ctx context.Context, status string) ([]*domain.ApplicationWithUser, error)
	GetByID(ctx context.Context, id string) (*domain.ApplicationWithUser, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// RoleUpdater promotes or demotes a user when an application is reviewed.
// Satisfied by the auth service.
type RoleUpdater interface {
	UpdateRoleByID(ctx context.Context, userID, role string) error
}

// ApplyInput is the application payload submitted by a user.
type ApplyInput struct {
	Name      string `json:"name" validate:"required"`
	City      string `json:"city" validate:"required"`
	Location  string `json:"location" validate:"required"`
	Expertise string `json:"expertise" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
	Image     string `json:"image"`
	CNIC      string `json:"cnic" validate:"required"`
}

type Service struct {
	apps     ApplicationStore
	users    RoleUpdater
	validate *validator.Validate
}

func NewService(apps ApplicationStore, users RoleUpdater) *Service {
	return &Service{
		apps:     apps,
		users:    users,
		validate: validator.New(),
	}
}

func (s *Service) Apply(ctx context.Context, userID string, in ApplyInput) (*domain.Application, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidApplication, err)
	}

	app, err := s.apps.Insert(ctx, &domain.Application{
		UserID:    userID,
		Name:      in.Name,
		City:      in.City,
		Location:  in.Location,
		Expertise: in.Expertise,
		Reason:    in.Reason,
		Image:     in.Image,
		CNIC:      in.CNIC,
		Status:    domain.StatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("save application: %w", err)
	}

	observability.Logger().Info("volunteer_application_submitted",
		zap.String("application_id", app.ID), zap.String("user_id", userID))
	return app, nil
}

func (s *Service) MyApplications(ctx context.Context, userID string) ([]*domain.Application, error) {
	return s.apps.FindByUser(ctx, userID)
}

// List returns applications with applicant identity, optionally filtered by
// status. An empty status returns everything.
func (s *Service) List(ctx context.Context, status string) ([]*domain.ApplicationWithUser, error) {
	return s.apps.List(ctx, status)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.ApplicationWithUser, error) {
	return s.apps.GetByID(ctx, id)
}

// Approve marks the application approved and promotes the applicant to the
// volunteer role.
func (s *Service) Approve(ctx context.Context, id string) (*domain.ApplicationWithUser, error) {
	return s.review(ctx, id, domain.StatusApproved, domain.RoleVolunteer)
}

// Reject marks the application rejected and resets the applicant to the user
// role.
func (s *Service) Reject(ctx context.Context, id string) (*domain.ApplicationWithUser, error) {
	return s.review(ctx, id, domain.StatusRejected, domain.RoleUser)
}

func (s *Service) review(ctx context.Context, id, status, role string) (*domain.ApplicationWithUser, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.apps.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}

	if err := s.users.UpdateRoleByID(ctx, app.UserID, role); err != nil {
		return nil, fmt.Errorf("update applicant role: %w", err)
	}

	observability.Logger().Info("volunteer_application_reviewed",
		zap.String("application_id", id),
		zap.String("status", status),
		zap.String("user_id", app.UserID),
	)

	app.Status = status
	return app, nil
}

package lead

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"example.com/storefront/internal/domain/record"
	domsession "example.com/storefront/internal/domain/session"
	"example.com/storefront/internal/validation"
)

var (
	ErrStaleForm  = errors.New("stale lead form")
	ErrValidation = errors.New("lead validation failed")
)

// FieldError names the first offending field of a lead submission.
type FieldError struct {
	Field string
	Tag   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: failed %s", e.Field, e.Tag)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}

type ContactRequest struct {
	Name             string `json:"name" validate:"required,max=200"`
	Email            string `json:"email" validate:"required,email,max=254"`
	Phone            string `json:"phone,omitempty" validate:"max=50"`
	Subject          string `json:"subject,omitempty" validate:"max=200"`
	Message          string `json:"message" validate:"required,max=5000"`
	IdempotencyToken string `json:"idempotency_token" validate:"max=128"`
}

type DistributorRequest struct {
	Company          string `json:"company" validate:"required,max=200"`
	ContactName      string `json:"contact_name" validate:"required,max=200"`
	Email            string `json:"email" validate:"required,email,max=254"`
	Phone            string `json:"phone" validate:"required,max=50"`
	Country          string `json:"country" validate:"required,max=100"`
	Website          string `json:"website,omitempty" validate:"omitempty,url,max=300"`
	Message          string `json:"message,omitempty" validate:"max=5000"`
	IdempotencyToken string `json:"idempotency_token" validate:"max=128"`
}

type TokenGuard interface {
	Validate(sess *domsession.Context, submitted string) bool
	Rotate(sess *domsession.Context) string
}

type Notifier interface {
	LeadReceived(collection string, rec record.Record)
}

type Service struct {
	store    record.Store
	guard    TokenGuard
	notifier Notifier
	validate *validator.Validate
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(store record.Store, guard TokenGuard, notifier Notifier, validate *validator.Validate, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &Service{
		store:    store,
		guard:    guard,
		notifier: notifier,
		validate: validate,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *Service) SubmitContact(ctx context.Context, sess *domsession.Context, req ContactRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	return s.submit(ctx, sess, record.CollectionContacts, req.IdempotencyToken, req, record.Record{
		"name":    req.Name,
		"email":   req.Email,
		"phone":   req.Phone,
		"subject": req.Subject,
		"message": req.Message,
	})
}

func (s *Service) SubmitDistributorApplication(ctx context.Context, sess *domsession.Context, req DistributorRequest) (string, error) {
	req.Company = strings.TrimSpace(req.Company)
	req.ContactName = strings.TrimSpace(req.ContactName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Country = strings.TrimSpace(req.Country)
	req.Website = strings.TrimSpace(req.Website)
	req.Message = strings.TrimSpace(req.Message)

	return s.submit(ctx, sess, record.CollectionDistributors, req.IdempotencyToken, req, record.Record{
		"company":      req.Company,
		"contact_name": req.ContactName,
		"email":        req.Email,
		"phone":        req.Phone,
		"country":      req.Country,
		"website":      req.Website,
		"message":      req.Message,
		"status":       "new",
	})
}

func (s *Service) submit(ctx context.Context, sess *domsession.Context, collection, token string, req any, rec record.Record) (string, error) {
	if !s.guard.Validate(sess, token) {
		return "", ErrStaleForm
	}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return "", &FieldError{Field: verrs[0].Field(), Tag: verrs[0].Tag()}
		}
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	rec[record.FieldCreatedAt] = s.now().UTC().Format(time.RFC3339Nano)

	var id string
	err := record.WithBusyRetry(ctx, 1, 50*time.Millisecond, func() error {
		var err error
		id, err = s.store.Append(ctx, collection, rec)
		return err
	})
	if err != nil {
		s.logger.Error("lead append failed",
			slog.String("collection", collection),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("append %s: %w", collection, err)
	}

	s.guard.Rotate(sess)
	rec[record.FieldID] = id
	if s.notifier != nil {
		s.notifier.LeadReceived(collection, rec)
	}
	return id, nil
}

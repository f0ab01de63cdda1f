package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reverie-revival/internal/domain"
	"reverie-revival/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var ErrInvalidContact = errors.New("invalid contact message")

// ContactInput is the storefront contact form
type ContactInput struct {
	Name    string  `json:"name" validate:"required,max=255"`
	Email   string  `json:"email" validate:"required,email,max=255"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Message string  `json:"message" validate:"required,max=5000"`
}

func (in ContactInput) normalize() ContactInput {
	out := ContactInput{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Message: strings.TrimSpace(in.Message),
	}
	if in.Phone != nil {
		if phone := strings.TrimSpace(*in.Phone); phone != "" {
			out.Phone = &phone
		}
	}
	return out
}

// ContactService accepts storefront enquiries and lists them for admins
type ContactService interface {
	Submit(ctx context.Context, input ContactInput) (*domain.ContactMessage, error)
	List(ctx context.Context, limit int) ([]domain.ContactMessage, error)
}

type contactService struct {
	contactRepo repository.ContactRepository
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewContactService creates a new instance of ContactService
func NewContactService(contactRepo repository.ContactRepository, logger *zap.Logger) ContactService {
	return &contactService{
		contactRepo: contactRepo,
		validate:    validator.New(),
		logger:      logger,
	}
}

// Submit trims the form, validates it and stores the message. Validation
// failures wrap ErrInvalidContact.
func (s *contactService) Submit(ctx context.Context, input ContactInput) (*domain.ContactMessage, error) {
	in := input.normalize()
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}

	message := &domain.ContactMessage{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Message: in.Message,
	}
	if err := s.contactRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.logger.Info("Contact message received", zap.String("message_id", message.ID.String()))
	return message, nil
}

func (s *contactService) List(ctx context.Context, limit int) ([]domain.ContactMessage, error) {
	return s.contactRepo.List(ctx, limit)
}

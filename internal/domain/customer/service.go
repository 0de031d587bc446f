// internal/domain/customer/service.go
package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrProfileNotFound = errors.New("profile not found")
)

// Directory looks up accounts and profiles
type Directory interface {
	FindAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	FindProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	SaveProfile(ctx context.Context, p *Profile) error
}

// Service handles customer lookups
type Service struct {
	dir    Directory
	logger logrus.FieldLogger
}

// NewService creates a new customer service
func NewService(dir Directory, logger logrus.FieldLogger) *Service {
	return &Service{dir: dir, logger: logger}
}

// ProfileUpdateRequest represents profile update data
type ProfileUpdateRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// ResolveContact picks the e-mail and display name to write to. Each field
// is taken from the account first, then the profile, then the fallback
// captured by the payment provider. Lookup failures only skip a source.
func (s *Service) ResolveContact(ctx context.Context, userID *uuid.UUID, fallback Contact) Contact {
	var emails, names []string

	if userID != nil {
		if acc, err := s.dir.FindAccount(ctx, *userID); err == nil {
			emails = append(emails, acc.Email)
			names = append(names, acc.FullName)
		} else if !errors.Is(err, ErrAccountNotFound) {
			s.logger.WithError(err).WithField("user_id", *userID).Warn("account lookup failed")
		}

		if prof, err := s.dir.FindProfile(ctx, *userID); err == nil {
			emails = append(emails, prof.Email)
			names = append(names, prof.FullName())
		} else if !errors.Is(err, ErrProfileNotFound) {
			s.logger.WithError(err).WithField("user_id", *userID).Warn("profile lookup failed")
		}
	}

	emails = append(emails, fallback.Email)
	names = append(names, fallback.Name)

	return Contact{
		Email: firstNonEmpty(emails...),
		Name:  firstNonEmpty(names...),
	}
}

// GetProfile returns the profile of a user, creating an empty one from the
// account when none exists yet
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	prof, err := s.dir.FindProfile(ctx, userID)
	if err == nil {
		return prof, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	prof = &Profile{UserID: userID}
	if acc, err := s.dir.FindAccount(ctx, userID); err == nil {
		prof.Email = acc.Email
		first, last, _ := strings.Cut(acc.FullName, " ")
		prof.FirstName, prof.LastName = first, last
	}
	return prof, nil
}

// UpdateProfile applies partial changes to a user's profile
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *ProfileUpdateRequest) (*Profile, error) {
	prof, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		prof.Email = strings.TrimSpace(*req.Email)
	}
	if req.FirstName != nil {
		prof.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		prof.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		prof.Phone = strings.TrimSpace(*req.Phone)
	}

	if err := s.dir.SaveProfile(ctx, prof); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return prof, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

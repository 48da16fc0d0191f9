package delivery

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/controller/apperror"
	"storefront/internal/domain/auth"

	"github.com/google/uuid"
)

type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Add(ctx context.Context, p auth.Principal, fields Fields) (Info, error) {
	if p.IsZero() {
		return Info{}, apperror.ErrUnauthenticated
	}
	if err := fields.Validate(); err != nil {
		return Info{}, fmt.Errorf("%w: %s", apperror.ErrInvalidInput, err.Error())
	}

	now := time.Now()
	info := Info{
		ID:        uuid.New().String(),
		UserID:    p.UserID,
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		Email:     fields.Email,
		Street:    fields.Street,
		City:      fields.City,
		State:     fields.State,
		Zipcode:   fields.Zipcode,
		Country:   fields.Country,
		Phone:     fields.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, info); err != nil {
		return Info{}, fmt.Errorf("create delivery info: %w", err)
	}
	return info, nil
}

func (s *Service) List(ctx context.Context, p auth.Principal) ([]Info, error) {
	if p.IsZero() {
		return nil, apperror.ErrUnauthenticated
	}

	infos, err := s.repo.FindByOwner(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list delivery infos: %w", err)
	}
	return infos, nil
}

func (s *Service) Update(ctx context.Context, p auth.Principal, id string, fields Fields) (Info, error) {
	if p.IsZero() {
		return Info{}, apperror.ErrUnauthenticated
	}
	if err := fields.Validate(); err != nil {
		return Info{}, fmt.Errorf("%w: %s", apperror.ErrInvalidInput, err.Error())
	}

	if err := s.requireOwned(ctx, p, id); err != nil {
		return Info{}, err
	}

	if _, err := s.repo.Update(ctx, id, fields); err != nil {
		return Info{}, fmt.Errorf("update delivery info: %w", err)
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Info{}, fmt.Errorf("reload delivery info: %w", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, p auth.Principal, id string) error {
	if p.IsZero() {
		return apperror.ErrUnauthenticated
	}

	if err := s.requireOwned(ctx, p, id); err != nil {
		return err
	}

	if _, err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete delivery info: %w", err)
	}
	return nil
}

func (s *Service) requireOwned(ctx context.Context, p auth.Principal, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != p.UserID {
		return apperror.ErrForbidden
	}
	return nil
}

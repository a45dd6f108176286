package service

import (
	"context"
	"strings"

	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/storage"
)

// AdminService holds the moderation operations behind the admin and owner gates.
type AdminService struct {
	users repository.UserRepository
	store storage.Store
}

func NewAdminService(users repository.UserRepository, store storage.Store) *AdminService {
	return &AdminService{users: users, store: store}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// DeleteUser removes a regular account and every edge referencing it.
func (s *AdminService) DeleteUser(ctx context.Context, targetID uint) error {
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return models.NewForbiddenError("Admin cannot delete another admin account")
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	releaseUserImages(ctx, s.store, user)
	middleware.Logger.InfoContext(ctx, "user deleted by admin", "target_id", user.ID)
	return nil
}

// GiveTick grants a verified badge of badgeType, blue when empty.
func (s *AdminService) GiveTick(ctx context.Context, targetID uint, badgeType string) error {
	badge := models.VerifiedType(strings.ToLower(strings.TrimSpace(badgeType)))
	if badge == "" {
		badge = models.VerifiedBlue
	}
	if !badge.Valid() {
		return models.NewValidationError("Invalid verified type")
	}

	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return models.NewConflictError("Account is already an admin account")
	}
	if user.SubscriptionStatus == models.SubscriptionTick {
		return models.NewConflictError("User already has the verified tick")
	}
	user.SubscriptionStatus = models.SubscriptionTick
	user.VerifiedType = badge
	return s.users.Update(ctx, user)
}

// RemoveTick revokes a regular user's verified badge.
func (s *AdminService) RemoveTick(ctx context.Context, targetID uint) error {
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return models.NewForbiddenError("Cannot remove the tick of an admin account")
	}
	if user.SubscriptionStatus != models.SubscriptionTick {
		return models.NewValidationError("User does not have the verified tick")
	}
	user.SubscriptionStatus = models.SubscriptionInactive
	user.VerifiedType = models.VerifiedBlue
	return s.users.Update(ctx, user)
}

func (s *AdminService) MakeAdmin(ctx context.Context, targetID uint) error {
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return models.NewConflictError("Account is already an admin account")
	}
	user.Role = models.RoleAdmin
	user.SubscriptionStatus = models.SubscriptionTick
	user.VerifiedType = models.VerifiedBlack
	return s.users.Update(ctx, user)
}

// RevokeAdmin demotes an admin to a regular user.
func (s *AdminService) RevokeAdmin(ctx context.Context, targetID uint) error {
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	switch user.Role {
	case models.RoleOwner:
		return models.NewForbiddenError("Cannot revoke the owner account")
	case models.RoleUser:
		return models.NewValidationError("Account is not an admin account")
	}
	user.Role = models.RoleUser
	user.SubscriptionStatus = models.SubscriptionInactive
	user.VerifiedType = models.VerifiedBlue
	return s.users.Update(ctx, user)
}

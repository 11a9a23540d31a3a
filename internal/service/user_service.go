package service

import (
	"context"
	"strings"

	"teamspace/internal/apperr"
	"teamspace/internal/auth"
	"teamspace/internal/entity"
	"teamspace/internal/model"
)

// UserService handles user profile reads and mutations.
type UserService struct {
	repo model.Repository
}

// NewUserService creates a user service instance.
func NewUserService(repo model.Repository) *UserService {
	return &UserService{repo: repo}
}

// GetByID loads a user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (*entity.DbUser, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// List returns paginated users.
func (s *UserService) List(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error) {
	return s.repo.ListUsers(ctx, params)
}

// Update applies a partial update. Only non-nil fields change; a changed
// email is re-validated for uniqueness excluding the user's own id.
func (s *UserService) Update(ctx context.Context, id string, req entity.UserUpdateRequest) (*entity.DbUser, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, apperr.Validation("email must not be empty")
		}
		if email != user.Email {
			taken, err := s.repo.IsEmailTaken(ctx, email, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.Conflict("email already registered")
			}
			updates["email"] = email
		}
	}

	if req.Firstname != nil {
		updates["firstname"] = strings.TrimSpace(*req.Firstname)
	}
	if req.Lastname != nil {
		updates["lastname"] = strings.TrimSpace(*req.Lastname)
	}

	if req.Password != nil {
		if err := auth.ValidatePasswordStrength(*req.Password); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}

	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.repo.UpdateUser(ctx, id, updates); err != nil {
		if isDuplicatedKey(err) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, err
	}

	return s.repo.GetUserByID(ctx, id)
}

// Deactivate flips the account inactive. The operation is reversible via
// Update, unlike Delete.
func (s *UserService) Deactivate(ctx context.Context, id string) (*entity.DbUser, error) {
	if _, err := s.repo.GetUserByID(ctx, id); err != nil {
		if isRecordNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	if err := s.repo.UpdateUser(ctx, id, map[string]interface{}{"is_active": false}); err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, id)
}

// Delete removes the user record irreversibly.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if isRecordNotFound(err) {
			return apperr.NotFound("user not found")
		}
		return err
	}
	return nil
}

// GetUserWorkspaces lists the active workspaces the user belongs to.
func (s *UserService) GetUserWorkspaces(ctx context.Context, userID string, params *entity.WorkspaceQuery) ([]entity.DbWorkspace, *entity.Meta, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if isRecordNotFound(err) {
			return nil, nil, apperr.NotFound("user not found")
		}
		return nil, nil, err
	}
	return s.repo.ListUserWorkspaces(ctx, userID, params)
}

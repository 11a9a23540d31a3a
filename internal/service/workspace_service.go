package service

import (
	"context"
	"strings"

	"teamspace/internal/apperr"
	"teamspace/internal/authz"
	"teamspace/internal/entity"
	"teamspace/internal/model"
)

// WorkspaceService handles workspace lifecycle and membership
// operations, enforcing the single-owner invariants.
type WorkspaceService struct {
	repo model.Repository
}

// NewWorkspaceService creates a workspace service instance.
func NewWorkspaceService(repo model.Repository) *WorkspaceService {
	return &WorkspaceService{repo: repo}
}

// Create creates a workspace and atomically assigns the creator as its
// owner. The two writes share one transaction boundary.
func (s *WorkspaceService) Create(ctx context.Context, req entity.WorkspaceCreateRequest, ownerID string) (*entity.DbWorkspace, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !entity.ValidSlug(slug) {
		return nil, apperr.Validation("slug may only contain letters, digits, hyphens and underscores")
	}

	taken, err := s.repo.IsSlugTaken(ctx, slug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("workspace slug already taken")
	}

	workspace := &entity.DbWorkspace{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}

	if err := s.repo.CreateWorkspaceWithOwner(ctx, workspace, ownerID); err != nil {
		// Concurrent claims on the same slug lose the race at the
		// unique index; the loser must retry with a new slug.
		if isDuplicatedKey(err) {
			return nil, apperr.Conflict("workspace slug already taken")
		}
		return nil, err
	}

	return workspace, nil
}

// GetByID loads a workspace by id.
func (s *WorkspaceService) GetByID(ctx context.Context, id string) (*entity.DbWorkspace, error) {
	workspace, err := s.repo.GetWorkspaceByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperr.NotFound("workspace not found")
		}
		return nil, err
	}
	return workspace, nil
}

// GetBySlug loads a workspace by slug.
func (s *WorkspaceService) GetBySlug(ctx context.Context, slug string) (*entity.DbWorkspace, error) {
	workspace, err := s.repo.GetWorkspaceBySlug(ctx, slug)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperr.NotFound("workspace not found")
		}
		return nil, err
	}
	return workspace, nil
}

// ListAll returns every workspace, paginated.
func (s *WorkspaceService) ListAll(ctx context.Context, params *entity.WorkspaceQuery) ([]entity.DbWorkspace, *entity.Meta, error) {
	return s.repo.ListWorkspaces(ctx, params)
}

// Update applies a partial update. A changed slug is re-validated for
// uniqueness excluding the workspace's own id, then lower-cased.
func (s *WorkspaceService) Update(ctx context.Context, id string, req entity.WorkspaceUpdateRequest) (*entity.DbWorkspace, error) {
	workspace, err := s.repo.GetWorkspaceByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperr.NotFound("workspace not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		updates["name"] = name
	}

	if req.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*req.Slug))
		if !entity.ValidSlug(slug) {
			return nil, apperr.Validation("slug may only contain letters, digits, hyphens and underscores")
		}
		if slug != workspace.Slug {
			taken, err := s.repo.IsSlugTaken(ctx, slug, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.Conflict("workspace slug already taken")
			}
			updates["slug"] = slug
		}
	}

	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return workspace, nil
	}

	if err := s.repo.UpdateWorkspace(ctx, id, updates); err != nil {
		if isDuplicatedKey(err) {
			return nil, apperr.Conflict("workspace slug already taken")
		}
		return nil, err
	}

	return s.repo.GetWorkspaceByID(ctx, id)
}

// Delete removes all memberships and then the workspace, in one
// transaction so a partial failure rolls back the whole removal.
func (s *WorkspaceService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetWorkspaceByID(ctx, id); err != nil {
		if isRecordNotFound(err) {
			return apperr.NotFound("workspace not found")
		}
		return err
	}
	if err := s.repo.DeleteWorkspaceCascade(ctx, id); err != nil {
		if isRecordNotFound(err) {
			return apperr.NotFound("workspace not found")
		}
		return err
	}
	return nil
}

// AddMember adds a user to the workspace. Elevation to admin requires
// the adder to be the owner (or a superuser); the owner role can never
// be granted through this path. Attribution records the adder's id at
// call time.
func (s *WorkspaceService) AddMember(ctx context.Context, workspaceID string, req entity.MemberAddRequest, adderID string) (*entity.DbMember, error) {
	if _, err := s.repo.GetWorkspaceByID(ctx, workspaceID); err != nil {
		if isRecordNotFound(err) {
			return nil, apperr.NotFound("workspace not found")
		}
		return nil, err
	}

	if _, err := s.repo.GetUserByID(ctx, req.UserID); err != nil {
		if isRecordNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = entity.RoleMember
	}
	if !role.Valid() {
		return nil, apperr.Validation("unknown role")
	}
	if role == entity.RoleOwner {
		return nil, apperr.Validation("workspace already has an owner")
	}

	if role == entity.RoleAdmin {
		allowed, err := s.actorMayPromote(ctx, workspaceID, adderID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, apperr.Validation("only owner can promote members to admin")
		}
	}

	if _, err := s.repo.GetMember(ctx, workspaceID, req.UserID); err == nil {
		return nil, apperr.Conflict("user is already a member of this workspace")
	} else if !isRecordNotFound(err) {
		return nil, err
	}

	member := &entity.DbMember{
		WorkspaceID: workspaceID,
		UserID:      req.UserID,
		Role:        role,
		AddedByID:   &adderID,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		// Concurrent adds of the same user lose the race at the
		// composite unique index.
		if isDuplicatedKey(err) {
			return nil, apperr.Conflict("user is already a member of this workspace")
		}
		return nil, err
	}
	return member, nil
}

// UpdateMemberRole changes a member's role. Owner immutability and the
// owner-only promotion rule are business-rule rejections (Validation),
// not access-control rejections.
func (s *WorkspaceService) UpdateMemberRole(ctx context.Context, workspaceID, memberUserID string, newRole entity.Role, updaterID string) (*entity.DbMember, error) {
	if !newRole.Valid() {
		return nil, apperr.Validation("unknown role")
	}

	member, err := s.repo.GetMember(ctx, workspaceID, memberUserID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperr.NotFound("member not found in workspace")
		}
		return nil, err
	}

	if !authz.CanChangeRole(member.Role, newRole) {
		return nil, apperr.Validation("cannot change owner role")
	}
	if newRole == entity.RoleOwner && member.Role != entity.RoleOwner {
		return nil, apperr.Validation("workspace already has an owner")
	}

	if newRole == entity.RoleAdmin {
		allowed, err := s.actorMayPromote(ctx, workspaceID, updaterID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, apperr.Validation("only owner can promote members to admin")
		}
	}

	if member.Role == newRole {
		return member, nil
	}

	if err := s.repo.UpdateMemberRole(ctx, workspaceID, memberUserID, newRole); err != nil {
		return nil, err
	}
	member.Role = newRole
	return member, nil
}

// RemoveMember removes a member from the workspace. The owner can never
// be removed through this path.
func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, memberUserID string) error {
	member, err := s.repo.GetMember(ctx, workspaceID, memberUserID)
	if err != nil {
		if isRecordNotFound(err) {
			return apperr.NotFound("member not found in workspace")
		}
		return err
	}

	if !authz.CanRemoveMember(member.Role) {
		return apperr.Validation("cannot remove workspace owner")
	}

	removed, err := s.repo.RemoveMember(ctx, workspaceID, memberUserID)
	if err != nil {
		return err
	}
	if !removed {
		// A concurrent removal got there first.
		return apperr.NotFound("member not found in workspace")
	}
	return nil
}

// GetWithMembers returns the workspace plus all currently resolvable
// members with their user display info in a single consistent read.
func (s *WorkspaceService) GetWithMembers(ctx context.Context, id string) (*entity.WorkspaceWithMembers, error) {
	workspace, err := s.repo.GetWorkspaceByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperr.NotFound("workspace not found")
		}
		return nil, err
	}

	rows, err := s.repo.ListMembersWithUsers(ctx, id)
	if err != nil {
		return nil, err
	}

	members := make([]entity.MemberView, 0, len(rows))
	for _, row := range rows {
		members = append(members, entity.MemberView{
			Role:      row.Member.Role,
			JoinedAt:  row.Member.JoinedAt,
			AddedByID: row.Member.AddedByID,
			User: entity.MemberUser{
				ID:        row.User.ID,
				Email:     row.User.Email,
				Firstname: row.User.Firstname,
				Lastname:  row.User.Lastname,
			},
		})
	}

	return &entity.WorkspaceWithMembers{
		ID:          workspace.ID,
		Name:        workspace.Name,
		Slug:        workspace.Slug,
		Description: workspace.Description,
		MemberCount: len(members),
		Members:     members,
	}, nil
}

// actorMayPromote reports whether the actor may elevate a member to
// admin: superusers unconditionally, otherwise only the workspace owner.
func (s *WorkspaceService) actorMayPromote(ctx context.Context, workspaceID, actorID string) (bool, error) {
	actor, err := s.repo.GetUserByID(ctx, actorID)
	if err != nil {
		if isRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if actor.IsSuperuser {
		return true, nil
	}

	member, err := s.repo.GetMember(ctx, workspaceID, actorID)
	if err != nil {
		if isRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return authz.CanPromoteToAdmin(member.Role), nil
}

package model

import (
	"context"

	"teamspace/internal/entity"
)

// Repository defines the persistence operations for identities,
// workspaces and memberships.
type Repository interface {
	// Users
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id string) (*entity.DbUser, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error)
	DeleteUser(ctx context.Context, id string) error
	IsEmailTaken(ctx context.Context, email, excludeID string) (bool, error)

	// Workspaces
	CreateWorkspaceWithOwner(ctx context.Context, workspace *entity.DbWorkspace, ownerID string) error
	GetWorkspaceByID(ctx context.Context, id string) (*entity.DbWorkspace, error)
	GetWorkspaceBySlug(ctx context.Context, slug string) (*entity.DbWorkspace, error)
	ListWorkspaces(ctx context.Context, params *entity.WorkspaceQuery) ([]entity.DbWorkspace, *entity.Meta, error)
	ListUserWorkspaces(ctx context.Context, userID string, params *entity.WorkspaceQuery) ([]entity.DbWorkspace, *entity.Meta, error)
	UpdateWorkspace(ctx context.Context, id string, updates map[string]interface{}) error
	IsSlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	DeleteWorkspaceCascade(ctx context.Context, id string) error

	// Memberships
	AddMember(ctx context.Context, member *entity.DbMember) error
	GetMember(ctx context.Context, workspaceID, userID string) (*entity.DbMember, error)
	ListMembers(ctx context.Context, workspaceID string) ([]entity.DbMember, error)
	ListMembersWithUsers(ctx context.Context, workspaceID string) ([]entity.MemberWithUser, error)
	UpdateMemberRole(ctx context.Context, workspaceID, userID string, role entity.Role) error
	RemoveMember(ctx context.Context, workspaceID, userID string) (bool, error)
}

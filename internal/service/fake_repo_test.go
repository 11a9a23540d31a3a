package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"teamspace/internal/entity"
)

// fakeRepo is an in-memory Repository used by the service tests. It
// mirrors the store's observable behavior: gorm sentinel errors for
// missing rows and duplicated keys, unique email and slug, one
// membership row per (user, workspace) pair.
type fakeRepo struct {
	mu         sync.Mutex
	nextID     int
	users      map[string]*entity.DbUser
	workspaces map[string]*entity.DbWorkspace
	members    map[string]*entity.DbMember
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      make(map[string]*entity.DbUser),
		workspaces: make(map[string]*entity.DbWorkspace),
		members:    make(map[string]*entity.DbMember),
	}
}

func (r *fakeRepo) newID() string {
	r.nextID++
	return fmt.Sprintf("id-%04d", r.nextID)
}

func memberKey(workspaceID, userID string) string {
	return workspaceID + "|" + userID
}

func (r *fakeRepo) CreateUser(_ context.Context, user *entity.DbUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == "" {
		user.ID = r.newID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeRepo) UpdateUser(_ context.Context, id string, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "email":
			email := value.(string)
			for otherID, other := range r.users {
				if otherID != id && strings.EqualFold(other.Email, email) {
					return gorm.ErrDuplicatedKey
				}
			}
			user.Email = email
		case "firstname":
			user.Firstname = value.(string)
		case "lastname":
			user.Lastname = value.(string)
		case "password_hash":
			user.PasswordHash = value.(string)
		case "is_active":
			user.IsActive = value.(bool)
		case "is_superuser":
			user.IsSuperuser = value.(bool)
		case "pending_verification_token":
			if value == nil {
				user.PendingVerificationToken = nil
			} else {
				switch v := value.(type) {
				case string:
					token := v
					user.PendingVerificationToken = &token
				case *string:
					user.PendingVerificationToken = v
				}
			}
		}
	}
	user.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*entity.DbUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetUserByID(_ context.Context, id string) (*entity.DbUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeRepo) ListUsers(_ context.Context, _ *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]entity.DbUser, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, &entity.Meta{Page: 1, PageSize: int64(len(users)), Total: int64(len(users))}, nil
}

func (r *fakeRepo) DeleteUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) IsEmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, user := range r.users {
		if id != excludeID && strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CreateWorkspaceWithOwner(_ context.Context, workspace *entity.DbWorkspace, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.workspaces {
		if existing.Slug == workspace.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	if workspace.ID == "" {
		workspace.ID = r.newID()
	}
	workspace.CreatedAt = time.Now()
	workspace.UpdatedAt = workspace.CreatedAt
	clone := *workspace
	r.workspaces[workspace.ID] = &clone
	r.members[memberKey(workspace.ID, ownerID)] = &entity.DbMember{
		ID:          r.newID(),
		WorkspaceID: workspace.ID,
		UserID:      ownerID,
		Role:        entity.RoleOwner,
		JoinedAt:    time.Now(),
	}
	return nil
}

func (r *fakeRepo) GetWorkspaceByID(_ context.Context, id string) (*entity.DbWorkspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	workspace, ok := r.workspaces[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *workspace
	return &clone, nil
}

func (r *fakeRepo) GetWorkspaceBySlug(_ context.Context, slug string) (*entity.DbWorkspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, workspace := range r.workspaces {
		if workspace.Slug == slug {
			clone := *workspace
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) ListWorkspaces(_ context.Context, _ *entity.WorkspaceQuery) ([]entity.DbWorkspace, *entity.Meta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	workspaces := make([]entity.DbWorkspace, 0, len(r.workspaces))
	for _, workspace := range r.workspaces {
		workspaces = append(workspaces, *workspace)
	}
	return workspaces, &entity.Meta{Page: 1, PageSize: int64(len(workspaces)), Total: int64(len(workspaces))}, nil
}

func (r *fakeRepo) ListUserWorkspaces(_ context.Context, userID string, _ *entity.WorkspaceQuery) ([]entity.DbWorkspace, *entity.Meta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var workspaces []entity.DbWorkspace
	for _, member := range r.members {
		if member.UserID != userID {
			continue
		}
		workspace, ok := r.workspaces[member.WorkspaceID]
		if !ok || !workspace.IsActive {
			continue
		}
		workspaces = append(workspaces, *workspace)
	}
	return workspaces, &entity.Meta{Page: 1, PageSize: int64(len(workspaces)), Total: int64(len(workspaces))}, nil
}

func (r *fakeRepo) UpdateWorkspace(_ context.Context, id string, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	workspace, ok := r.workspaces[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "name":
			workspace.Name = value.(string)
		case "slug":
			slug := value.(string)
			for otherID, other := range r.workspaces {
				if otherID != id && other.Slug == slug {
					return gorm.ErrDuplicatedKey
				}
			}
			workspace.Slug = slug
		case "description":
			workspace.Description = value.(string)
		case "is_active":
			workspace.IsActive = value.(bool)
		}
	}
	workspace.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRepo) IsSlugTaken(_ context.Context, slug, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, workspace := range r.workspaces {
		if id != excludeID && workspace.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) DeleteWorkspaceCascade(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workspaces[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for key, member := range r.members {
		if member.WorkspaceID == id {
			delete(r.members, key)
		}
	}
	delete(r.workspaces, id)
	return nil
}

func (r *fakeRepo) AddMember(_ context.Context, member *entity.DbMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey(member.WorkspaceID, member.UserID)
	if _, ok := r.members[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	if member.ID == "" {
		member.ID = r.newID()
	}
	member.JoinedAt = time.Now()
	clone := *member
	r.members[key] = &clone
	return nil
}

func (r *fakeRepo) GetMember(_ context.Context, workspaceID, userID string) (*entity.DbMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.members[memberKey(workspaceID, userID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *member
	return &clone, nil
}

func (r *fakeRepo) ListMembers(_ context.Context, workspaceID string) ([]entity.DbMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var members []entity.DbMember
	for _, member := range r.members {
		if member.WorkspaceID == workspaceID {
			members = append(members, *member)
		}
	}
	return members, nil
}

func (r *fakeRepo) ListMembersWithUsers(_ context.Context, workspaceID string) ([]entity.MemberWithUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []entity.MemberWithUser
	for _, member := range r.members {
		if member.WorkspaceID != workspaceID {
			continue
		}
		user, ok := r.users[member.UserID]
		if !ok || !user.IsActive {
			continue
		}
		rows = append(rows, entity.MemberWithUser{Member: *member, User: *user})
	}
	return rows, nil
}

func (r *fakeRepo) UpdateMemberRole(_ context.Context, workspaceID, userID string, role entity.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.members[memberKey(workspaceID, userID)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	member.Role = role
	return nil
}

func (r *fakeRepo) RemoveMember(_ context.Context, workspaceID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey(workspaceID, userID)
	if _, ok := r.members[key]; !ok {
		return false, nil
	}
	delete(r.members, key)
	return true, nil
}

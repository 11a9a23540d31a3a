package sql

import (
	"context"
	"fmt"
	"time"

	"teamspace/internal/entity"
)

// AddMember persists a new membership row. Duplicate (user, workspace)
// pairs fail with gorm.ErrDuplicatedKey via the composite unique index.
func (r *GormRepository) AddMember(ctx context.Context, member *entity.DbMember) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if member == nil {
		return fmt.Errorf("member is nil")
	}
	return r.db.WithContext(ctx).Create(member).Error
}

// GetMember loads the membership of a user in a workspace.
func (r *GormRepository) GetMember(ctx context.Context, workspaceID, userID string) (*entity.DbMember, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if workspaceID == "" || userID == "" {
		return nil, fmt.Errorf("invalid member lookup")
	}
	var member entity.DbMember
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers returns every membership row of the workspace.
func (r *GormRepository) ListMembers(ctx context.Context, workspaceID string) ([]entity.DbMember, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if workspaceID == "" {
		return nil, fmt.Errorf("invalid workspace id")
	}
	var members []entity.DbMember
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// memberUserRow is the flat scan target for the member/user join.
type memberUserRow struct {
	MemberID    string      `gorm:"column:member_id"`
	WorkspaceID string      `gorm:"column:workspace_id"`
	Role        entity.Role `gorm:"column:role"`
	JoinedAt    time.Time   `gorm:"column:joined_at"`
	AddedByID   *string     `gorm:"column:added_by_id"`
	UserID      string      `gorm:"column:user_id"`
	Email       string      `gorm:"column:email"`
	Firstname   string      `gorm:"column:firstname"`
	Lastname    string      `gorm:"column:lastname"`
}

// ListMembersWithUsers returns memberships joined with their user rows
// in a single query. Memberships whose user no longer resolves (deleted
// or deactivated) are excluded rather than surfaced as errors.
func (r *GormRepository) ListMembersWithUsers(ctx context.Context, workspaceID string) ([]entity.MemberWithUser, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if workspaceID == "" {
		return nil, fmt.Errorf("invalid workspace id")
	}

	var rows []memberUserRow
	err := r.db.WithContext(ctx).
		Table("workspace_members").
		Select("workspace_members.id AS member_id, workspace_members.workspace_id, workspace_members.role, workspace_members.joined_at, workspace_members.added_by_id, users.id AS user_id, users.email, users.firstname, users.lastname").
		Joins("JOIN users ON users.id = workspace_members.user_id").
		Where("workspace_members.workspace_id = ?", workspaceID).
		Where("users.is_active = ?", true).
		Order("workspace_members.joined_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]entity.MemberWithUser, 0, len(rows))
	for _, row := range rows {
		result = append(result, entity.MemberWithUser{
			Member: entity.DbMember{
				ID:          row.MemberID,
				WorkspaceID: row.WorkspaceID,
				UserID:      row.UserID,
				Role:        row.Role,
				JoinedAt:    row.JoinedAt,
				AddedByID:   row.AddedByID,
			},
			User: entity.DbUser{
				ID:        row.UserID,
				Email:     row.Email,
				Firstname: row.Firstname,
				Lastname:  row.Lastname,
				IsActive:  true,
			},
		})
	}
	return result, nil
}

// UpdateMemberRole changes the role of an existing membership.
func (r *GormRepository) UpdateMemberRole(ctx context.Context, workspaceID, userID string, role entity.Role) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if workspaceID == "" || userID == "" {
		return fmt.Errorf("invalid member lookup")
	}
	return r.db.WithContext(ctx).Model(&entity.DbMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Update("role", role).Error
}

// RemoveMember deletes a membership row. The boolean reports whether a
// row was actually removed, so concurrent removals can be told apart.
func (r *GormRepository) RemoveMember(ctx context.Context, workspaceID, userID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repository not initialised")
	}
	if workspaceID == "" || userID == "" {
		return false, fmt.Errorf("invalid member lookup")
	}
	result := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Delete(&entity.DbMember{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

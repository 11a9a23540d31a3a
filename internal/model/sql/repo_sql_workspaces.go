package sql

import (
	"context"
	"fmt"
	"strings"

	"teamspace/internal/entity"

	"gorm.io/gorm"
)

// CreateWorkspaceWithOwner creates the workspace row and the owner
// membership inside a single transaction. Either both writes commit or
// neither does.
func (r *GormRepository) CreateWorkspaceWithOwner(ctx context.Context, workspace *entity.DbWorkspace, ownerID string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if workspace == nil {
		return fmt.Errorf("workspace is nil")
	}
	if ownerID == "" {
		return fmt.Errorf("owner id is empty")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return err
		}
		member := &entity.DbMember{
			WorkspaceID: workspace.ID,
			UserID:      ownerID,
			Role:        entity.RoleOwner,
		}
		return tx.Create(member).Error
	})
}

// GetWorkspaceByID loads a workspace by ID.
func (r *GormRepository) GetWorkspaceByID(ctx context.Context, id string) (*entity.DbWorkspace, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == "" {
		return nil, fmt.Errorf("invalid workspace id")
	}
	var workspace entity.DbWorkspace
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&workspace).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

// GetWorkspaceBySlug loads a workspace by its slug.
func (r *GormRepository) GetWorkspaceBySlug(ctx context.Context, slug string) (*entity.DbWorkspace, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, fmt.Errorf("slug is empty")
	}
	var workspace entity.DbWorkspace
	if err := r.db.WithContext(ctx).Where("slug = ?", strings.ToLower(trimmed)).First(&workspace).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

// ListWorkspaces returns paginated workspaces ordered by creation time.
func (r *GormRepository) ListWorkspaces(ctx context.Context, params *entity.WorkspaceQuery) ([]entity.DbWorkspace, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbWorkspace{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var base *entity.BaseParams
	if params != nil {
		base = &params.BaseParams
	}
	page, pageSize, offset := resolvePage(base)

	var workspaces []entity.DbWorkspace
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&workspaces).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return workspaces, meta, nil
}

// ListUserWorkspaces returns the active workspaces a user belongs to.
func (r *GormRepository) ListUserWorkspaces(ctx context.Context, userID string, params *entity.WorkspaceQuery) ([]entity.DbWorkspace, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}
	if userID == "" {
		return nil, nil, fmt.Errorf("invalid user id")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbWorkspace{}).
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.user_id = ?", userID).
		Where("workspaces.is_active = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var base *entity.BaseParams
	if params != nil {
		base = &params.BaseParams
	}
	page, pageSize, offset := resolvePage(base)

	var workspaces []entity.DbWorkspace
	if err := query.Order("workspaces.created_at DESC").Offset(offset).Limit(pageSize).Find(&workspaces).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return workspaces, meta, nil
}

// UpdateWorkspace updates an existing workspace entry.
func (r *GormRepository) UpdateWorkspace(ctx context.Context, id string, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == "" {
		return fmt.Errorf("invalid workspace id")
	}
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&entity.DbWorkspace{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsSlugTaken checks whether another workspace already claims the slug.
func (r *GormRepository) IsSlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repository not initialised")
	}
	query := r.db.WithContext(ctx).Model(&entity.DbWorkspace{}).
		Where("slug = ?", strings.ToLower(strings.TrimSpace(slug)))
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteWorkspaceCascade removes all memberships of the workspace and
// then the workspace row, inside a single transaction. Memberships go
// first to avoid dangling foreign references.
func (r *GormRepository) DeleteWorkspaceCascade(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == "" {
		return fmt.Errorf("invalid workspace id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace_id = ?", id).Delete(&entity.DbMember{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entity.DbWorkspace{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

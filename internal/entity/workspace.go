package entity

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidSlug reports whether the slug contains only letters, digits,
// hyphens and underscores.
func ValidSlug(slug string) bool {
	return slug != "" && slugPattern.MatchString(slug)
}

// DbWorkspace represents a persisted workspace.
type DbWorkspace struct {
	ID          string     `gorm:"column:id;type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Name        string     `gorm:"column:name;type:varchar(255);index;not null" json:"name"`
	Slug        string     `gorm:"column:slug;type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Members     []DbMember `gorm:"foreignKey:WorkspaceID" json:"-"`
}

// TableName overrides default pluralised name.
func (DbWorkspace) TableName() string {
	return "workspaces"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (w *DbWorkspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// DbMember joins a user to a workspace with a role. At most one row may
// exist per (user, workspace) pair.
type DbMember struct {
	ID          string    `gorm:"column:id;type:varchar(36);primarykey" json:"id"`
	UserID      string    `gorm:"column:user_id;type:varchar(36);uniqueIndex:uq_user_workspace;not null" json:"user_id"`
	WorkspaceID string    `gorm:"column:workspace_id;type:varchar(36);uniqueIndex:uq_user_workspace;index;not null" json:"workspace_id"`
	Role        Role      `gorm:"column:role;type:varchar(20);not null" json:"role"`
	JoinedAt    time.Time `gorm:"column:joined_at;autoCreateTime" json:"joined_at"`
	AddedByID   *string   `gorm:"column:added_by_id;type:varchar(36)" json:"added_by_id,omitempty"`
}

// TableName overrides default pluralised name.
func (DbMember) TableName() string {
	return "workspace_members"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (m *DbMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type WorkspaceCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
}

// WorkspaceUpdateRequest carries a partial workspace update. Nil fields
// are untouched.
type WorkspaceUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type MemberAddRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   Role   `json:"role"`
}

type MemberUpdateRequest struct {
	Role Role `json:"role" binding:"required"`
}

// WorkspaceSummary is the workspace representation returned to clients.
type WorkspaceSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MemberView is one member row in the workspace member listing, with the
// resolved user display info.
type MemberView struct {
	Role      Role       `json:"role"`
	JoinedAt  time.Time  `json:"joined_at"`
	User      MemberUser `json:"user"`
	AddedByID *string    `json:"added_by_id,omitempty"`
}

// MemberWithUser pairs a membership row with its resolved user record.
type MemberWithUser struct {
	Member DbMember
	User   DbUser
}

// MemberUser is the display subset of a user embedded in member listings.
type MemberUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// WorkspaceWithMembers is a workspace plus its current resolvable members.
type WorkspaceWithMembers struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description string       `json:"description"`
	MemberCount int          `json:"member_count"`
	Members     []MemberView `json:"members"`
}

type WorkspaceQuery struct {
	BaseParams
}

type WorkspaceListResponse struct {
	Workspaces []WorkspaceSummary `json:"workspaces"`
	Meta       *Meta              `json:"meta"`
}

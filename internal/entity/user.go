package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DbUser represents a persisted user account.
type DbUser struct {
	ID                       string     `gorm:"column:id;type:varchar(36);primarykey" json:"id"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
	Email                    string     `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash             string     `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Firstname                string     `gorm:"column:firstname;type:varchar(255)" json:"firstname"`
	Lastname                 string     `gorm:"column:lastname;type:varchar(255)" json:"lastname"`
	IsActive                 bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsSuperuser              bool       `gorm:"column:is_superuser;not null;default:false" json:"is_superuser"`
	PendingVerificationToken *string    `gorm:"column:pending_verification_token;type:text" json:"-"`
	Memberships              []DbMember `gorm:"foreignKey:UserID" json:"-"`
}

// TableName overrides default pluralised name.
func (DbUser) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (u *DbUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserSummary is a lightweight user description returned to clients.
type UserSummary struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Firstname   string    `json:"firstname"`
	Lastname    string    `json:"lastname"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserQuery supports listing users with pagination.
type UserQuery struct {
	BaseParams
	Keyword string `json:"keyword" form:"keyword" query:"keyword"`
}

type AuthRegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

type AuthLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
}

type RegisterResponse struct {
	User                 UserSummary `json:"user"`
	VerificationRequired bool        `json:"verification_required"`
}

type SendEmailVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// UserUpdateRequest carries a partial user update. Nil fields are untouched.
type UserUpdateRequest struct {
	Email     *string `json:"email,omitempty"`
	Firstname *string `json:"firstname,omitempty"`
	Lastname  *string `json:"lastname,omitempty"`
	Password  *string `json:"password,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

type UserListResponse struct {
	Users []UserSummary `json:"users"`
	Meta  *Meta         `json:"meta"`
}

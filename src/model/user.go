package model

import "time"

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserName string `gorm:"size:60;not null;uniqueIndex" json:"user_name"`
	Email    string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`

	// APIToken authenticates requests from the web client.
	APIToken string `gorm:"size:64;uniqueIndex" json:"-"`

	FirstName string `gorm:"size:100" json:"first_name"`
	LastName  string `gorm:"size:100" json:"last_name"`
	Bio       string `gorm:"size:512" json:"bio"`
	AvatarURL string `gorm:"size:512" json:"avatar_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UpdateUserPayload carries partial profile updates; nil fields are ignored.
type UpdateUserPayload struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// ChangePasswordPayload carries a password change request.
type ChangePasswordPayload struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Project member roles
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// ProjectIDPrefix prefixes generated project IDs
const ProjectIDPrefix = "prj-"

// Project groups tasks and members under one owner
type Project struct {
	ID          string    `gorm:"primaryKey;size:30" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	OwnerID     string    `gorm:"size:30;not null;index" json:"owner_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// BeforeCreate hook to generate ID if not set
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generatePrefixedID(ProjectIDPrefix)
	}
	return nil
}

// ProjectMember links users to projects
type ProjectMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID string    `gorm:"size:30;not null;uniqueIndex:idx_project_user,priority:1" json:"project_id"`
	UserID    string    `gorm:"size:30;not null;uniqueIndex:idx_project_user,priority:2;index" json:"user_id"`
	Role      string    `gorm:"size:10;not null;default:member" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for ProjectMember
func (ProjectMember) TableName() string {
	return "project_members"
}

// ValidRole reports whether role is owner or member
func ValidRole(role string) bool {
	return role == RoleOwner || role == RoleMember
}

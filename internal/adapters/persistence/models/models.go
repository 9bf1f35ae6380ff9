package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Organisation: departments, employees, users
// ============================================================

// Department represents departments table
type Department struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Code               string    `gorm:"size:20;index" json:"code"`
	ParentDepartmentID *uint     `gorm:"index" json:"parentDepartmentId"`
	ManagerID          *uint     `gorm:"index" json:"managerId"`
	IsActive           bool      `gorm:"not null" json:"isActive"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Department) TableName() string {
	return "departments"
}

// Employee represents employees table
type Employee struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	EmployeeNumber  string      `gorm:"uniqueIndex;size:20;not null" json:"employeeNumber"`
	FirstName       string      `gorm:"size:100;not null" json:"firstName"`
	LastName        string      `gorm:"size:100;not null" json:"lastName"`
	Email           string      `gorm:"uniqueIndex;size:150;not null" json:"email"`
	DepartmentID    *uint       `gorm:"index" json:"departmentId"`
	HireDate        time.Time   `gorm:"not null" json:"hireDate"`
	TerminationDate *time.Time  `json:"terminationDate"`
	IsActive        bool        `gorm:"not null" json:"isActive"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
	Department      *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

func (Employee) TableName() string {
	return "employees"
}

// FullName joins first and last name
func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// User represents users table
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password     string         `gorm:"size:255;not null" json:"-"`
	FirstName    string         `gorm:"size:100" json:"firstName"`
	LastName     string         `gorm:"size:100" json:"lastName"`
	Role         string         `gorm:"size:20;default:'USER'" json:"role"`
	IsActive     bool           `gorm:"default:true" json:"isActive"`
	DepartmentID *uint          `gorm:"index" json:"departmentId"`
	LastLoginAt  *time.Time     `json:"lastLoginAt"`
	LoginCount   int            `gorm:"default:0" json:"loginCount"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID           uint       `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"isActive"`
	DepartmentID *uint      `json:"departmentId"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		IsActive:     u.IsActive,
		DepartmentID: u.DepartmentID,
		LastLoginAt:  u.LastLoginAt,
	}
}

// ============================================================
// Sessions
// ============================================================

// UserSession represents user_sessions table.
// Only SHA-256 digests of the issued tokens are stored.
type UserSession struct {
	SessionID        string    `gorm:"primaryKey;size:36" json:"sessionId"`
	UserID           uint      `gorm:"index;not null" json:"userId"`
	AccessTokenHash  string    `gorm:"size:64;index" json:"-"`
	RefreshTokenHash string    `gorm:"size:64;index" json:"-"`
	IsValid          bool      `gorm:"default:true;index" json:"isValid"`
	ExpiresIn        int       `gorm:"not null;default:3600" json:"expiresIn"`
	CreatedTime      time.Time `gorm:"not null;index" json:"createdTime"`
	LastActivity     time.Time `gorm:"not null" json:"lastActivity"`
	IPAddress        string    `gorm:"size:64" json:"ipAddress"`
	UserAgent        string    `gorm:"size:255" json:"userAgent"`
	RememberMe       bool      `gorm:"default:false" json:"rememberMe"`
	User             User      `gorm:"foreignKey:UserID" json:"-"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}

// ExpiresAt is the instant the session stops being usable
func (s *UserSession) ExpiresAt() time.Time {
	return s.CreatedTime.Add(time.Duration(s.ExpiresIn) * time.Second)
}

// IsExpired reports whether the session is invalid or past its lifetime at now
func (s *UserSession) IsExpired(now time.Time) bool {
	return !s.IsValid || now.After(s.ExpiresAt())
}

// LoginAttempt represents login_attempts table
type LoginAttempt struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"size:100;index" json:"username"`
	IPAddress     string    `gorm:"size:64" json:"ipAddress"`
	UserAgent     string    `gorm:"size:255" json:"userAgent"`
	Success       bool      `json:"success"`
	FailureReason string    `gorm:"size:50" json:"failureReason"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (LoginAttempt) TableName() string {
	return "login_attempts"
}

// AutoMigrate runs auto migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Department{},
		&Employee{},
		&User{},
		&UserSession{},
		&LoginAttempt{},
		&IdleResource{},
		&ResourceSkill{},
		&ResourceAvailability{},
		&AuditEntry{},
		&ExportSession{},
		&ImportSession{},
	)
}

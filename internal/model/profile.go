package model

import "time"

// Profile is a staff member: table profiles.
//
// SignatureBlob is an opaque signed-image payload (PNG bytes). Its presence
// gates posting and proposing; its content is only interpreted by document
// rendering, which tolerates anything it cannot decode.
type Profile struct {
	ProfileID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"profile_id"`
	FullName      string    `gorm:"type:varchar(100);not null"                     json:"full_name"`
	StaffID       string    `gorm:"type:varchar(20);not null"                      json:"staff_id"`
	Email         string    `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash  string    `gorm:"type:varchar(255);not null"                     json:"-"`
	IsAdmin       bool      `gorm:"not null;default:false"                         json:"is_admin"`
	SignatureBlob []byte    `gorm:"type:bytea"                                     json:"-"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName sets the table name.
func (Profile) TableName() string { return "profiles" }

// HasSignature reports whether a signature image is on file.
func (p *Profile) HasSignature() bool { return len(p.SignatureBlob) > 0 }

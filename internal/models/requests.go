package models

import "time"

// CreateEventInput carries the fields accepted by event creation.
type CreateEventInput struct {
	Title       string
	Description string
	Date        *time.Time
	ImageRef    string
}

// EventUpdate is a sparse update: nil fields are left untouched.
// ClearDate removes the stored date when set.
type EventUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	ClearDate   bool
	EventImgURL *string
}

// CertificateName correlates a student name with a file by its index in the
// uploaded batch (the web client's certsData entries).
type CertificateName struct {
	FileIndex   int    `json:"fileIndex"`
	StudentName string `json:"studentName"`
}

// RenameCertificateRequest is the body of the certificate rename endpoint
type RenameCertificateRequest struct {
	StudentName string `json:"studentName" form:"studentName"`
}

// AdminLoginRequest is the body of the admin login endpoint
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse is returned on a successful admin login
type AdminLoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
}

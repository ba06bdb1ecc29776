package models

import "time"

// AssignmentStatus enumerates the assignment lifecycle states.
type AssignmentStatus string

const (
	StatusPending  AssignmentStatus = "pending"
	StatusAccepted AssignmentStatus = "accepted"
	StatusRejected AssignmentStatus = "rejected"
)

// Assignment links one user (owner) and one admin (reviewer) with a task and
// a lifecycle status. The only transitions are pending to accepted and
// pending to rejected; accepted and rejected are terminal.
type Assignment struct {
	ID      string           `db:"id" json:"id"`
	UserID  string           `db:"user_id" json:"userId"`
	AdminID string           `db:"admin_id" json:"adminId"`
	// Username snapshots the owner's username at creation time.
	Username  string           `db:"username" json:"username"`
	Task      string           `db:"task" json:"task"`
	Status    AssignmentStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
}

// UploadAssignmentRequest is the payload for creating an assignment. UserID
// and AdminID carry usernames, not record ids; the field names match the
// public API contract.
type UploadAssignmentRequest struct {
	UserID  string `json:"userId" validate:"required"`
	Task    string `json:"task" validate:"required,max=255"`
	AdminID string `json:"adminId" validate:"required"`
}

package domain

import "time"

// AuditType names what happened in an AuditEvent.
type AuditType string

const (
	AuditAccountCreated  AuditType = "account.created"
	AuditAccountUpdated  AuditType = "account.updated"
	AuditPasswordChanged AuditType = "account.password_changed"
	AuditAccountDeleted  AuditType = "account.deleted"
	AuditLoginSucceeded  AuditType = "session.login"
	AuditLoginFailed     AuditType = "session.login_failed"
	AuditSessionCleared  AuditType = "session.logout"
)

// AuditEvent is one entry of the account/session audit trail.
type AuditEvent struct {
	ID        string    `json:"id"`
	Type      AuditType `json:"type"`
	ActorID   string    `json:"actor_id,omitempty"`
	SubjectID string    `json:"subject_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

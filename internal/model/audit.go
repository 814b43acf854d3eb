package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction enumerates audited operations.
type AuditAction string

const (
	AuditActionCreate     AuditAction = "CREATE"
	AuditActionUpdate     AuditAction = "UPDATE"
	AuditActionDelete     AuditAction = "DELETE"
	AuditActionLogin      AuditAction = "LOGIN"
	AuditActionLogout     AuditAction = "LOGOUT"
	AuditActionExamStart  AuditAction = "EXAM_START"
	AuditActionExamSubmit AuditAction = "EXAM_SUBMIT"
	AuditActionViolation  AuditAction = "VIOLATION"
)

// AuditEntry is a single audit trail record. Entries are enqueued to Redis
// by request handlers and batch-persisted by the audit worker.
type AuditEntry struct {
	ID         int64           `json:"id,omitempty"`
	UserID     *uuid.UUID      `json:"user_id,omitempty"`
	Action     AuditAction     `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID string          `json:"resource_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	UserAgent  string          `json:"user_agent,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

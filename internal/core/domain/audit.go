package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionRegister    AuditAction = "REGISTER"
	AuditActionLogin       AuditAction = "LOGIN"
	AuditActionAttachCard  AuditAction = "ATTACH_CARD"
	AuditActionDetachCard  AuditAction = "DETACH_CARD"
	AuditActionSetDefault  AuditAction = "SET_DEFAULT_CARD"
	AuditActionManualTopUp AuditAction = "MANUAL_TOPUP"
	AuditActionCoverRefund AuditAction = "COVER_REFUND"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	SellerID     *uuid.UUID  `json:"seller_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}

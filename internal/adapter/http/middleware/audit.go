package middleware

import (
	"encoding/json"
	"time"

	"balance-topup-service/internal/core/domain"
	"balance-topup-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// It maps HTTP methods and paths to audit actions.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resourceType := mapPathToAction(c.Request.URL.Path, c.Request.Method)
		if action == "" {
			return
		}

		var sellerID *uuid.UUID
		if sid, exists := c.Get(CtxSellerID); exists {
			if id, ok := sid.(uuid.UUID); ok {
				sellerID = &id
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			SellerID:     sellerID,
			Action:       action,
			ResourceType: resourceType,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapPathToAction(path, method string) (domain.AuditAction, string) {
	switch {
	case path == "/api/v1/auth/register" && method == "POST":
		return domain.AuditActionRegister, "seller"
	case path == "/api/v1/auth/login" && method == "POST":
		return domain.AuditActionLogin, "session"
	case path == "/api/v1/settings/payment_methods" && method == "POST":
		return domain.AuditActionAttachCard, "payment_method"
	case matchMethodPath(path) && method == "DELETE":
		return domain.AuditActionDetachCard, "payment_method"
	case matchDefaultPath(path) && method == "PUT":
		return domain.AuditActionSetDefault, "payment_method"
	case path == "/api/v1/topups" && method == "POST":
		return domain.AuditActionManualTopUp, "topup_charge"
	case path == "/internal/v1/refunds/ensure-covered" && method == "POST":
		return domain.AuditActionCoverRefund, "topup_charge"
	}
	return "", ""
}

func matchMethodPath(path string) bool {
	const prefix = "/api/v1/settings/payment_methods/"
	return len(path) > len(prefix) && path[:len(prefix)] == prefix &&
		!matchDefaultPath(path)
}

func matchDefaultPath(path string) bool {
	const prefix = "/api/v1/settings/payment_methods/"
	const suffix = "/default"
	return len(path) > len(prefix)+len(suffix) && path[:len(prefix)] == prefix &&
		path[len(path)-len(suffix):] == suffix
}

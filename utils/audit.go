package utils

import (
	"encoding/json"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
)

// Audit appends an audit row for a mutating admin action. Best effort; a
// failed audit write never fails the action itself.
func Audit(ctx iris.Context, action, resourceType string, resourceID uint, before interface{}, after interface{}) {
	var beforeJSON, afterJSON []byte
	if before != nil {
		beforeJSON, _ = json.Marshal(before)
	}
	if after != nil {
		afterJSON, _ = json.Marshal(after)
	}

	var adminID string
	if admin := AdminFromContext(ctx); admin != nil {
		adminID = admin.ID
	}

	entry := models.AuditLog{
		AdminID:      adminID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Before:       datatypes.JSON(beforeJSON),
		After:        datatypes.JSON(afterJSON),
		IPAddress:    ClientIP(ctx),
	}
	storage.DB.Create(&entry)
}

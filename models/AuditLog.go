package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records mutating admin actions with before/after snapshots.
type AuditLog struct {
	gorm.Model
	AdminID      string         `json:"adminID" gorm:"size:36;index"`
	Action       string         `json:"action" gorm:"size:64;index"`
	ResourceType string         `json:"resourceType" gorm:"size:32"`
	ResourceID   uint           `json:"resourceID"`
	Before       datatypes.JSON `json:"before"`
	After        datatypes.JSON `json:"after"`
	IPAddress    string         `json:"ipAddress" gorm:"size:45"`
}

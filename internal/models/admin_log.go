package models

import "time"

// AdminLog is one row of the admin action audit trail. Writes are
// best-effort: a failed insert is logged and never fails the parent
// operation.
type AdminLog struct {
	ID        string            `json:"id"`
	AdminID   string            `json:"adminId,omitempty"`
	Action    string            `json:"action"`
	Entity    string            `json:"entity,omitempty"`
	EntityID  string            `json:"entityId,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"userAgent,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

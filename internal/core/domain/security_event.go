package domain

import "time"

// SecurityEventType names an entry of the security audit trail.
type SecurityEventType string

const (
	EventLoginSucceeded     SecurityEventType = "login_succeeded"
	EventLoginFailed        SecurityEventType = "login_failed"
	EventLogout             SecurityEventType = "logout"
	EventVerificationFailed SecurityEventType = "verification_failed"
	EventSessionExpired     SecurityEventType = "session_expired"
	EventAccessDenied       SecurityEventType = "access_denied"
	EventLoginRequired      SecurityEventType = "login_required"
	EventViolation          SecurityEventType = "violation"
)

// SecurityEvent records a security-relevant decision taken by the console.
type SecurityEvent struct {
	ID        string            `json:"id" bson:"_id"`
	Type      SecurityEventType `json:"type" bson:"type"`
	Username  string            `json:"username,omitempty" bson:"username,omitempty"`
	Role      Role              `json:"role,omitempty" bson:"role,omitempty"`
	Path      string            `json:"path,omitempty" bson:"path,omitempty"`
	Trigger   string            `json:"trigger,omitempty" bson:"trigger,omitempty"`
	Reason    string            `json:"reason,omitempty" bson:"reason,omitempty"`
	Timestamp time.Time         `json:"timestamp" bson:"timestamp"`
}

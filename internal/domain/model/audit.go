package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditEventType string

const (
	AuditDecisionAllowed AuditEventType = "decision.allowed"
	AuditDecisionDenied  AuditEventType = "decision.denied"
	AuditTimedOut        AuditEventType = "request.timed_out"
	AuditDisconnected    AuditEventType = "request.disconnected"
	AuditFailed          AuditEventType = "request.failed"
)

// AuditLog is one append-only record of how a request was resolved.
type AuditLog struct {
	ID           string            `json:"id"`
	InvocationID string            `json:"invocation_id"`
	EventType    AuditEventType    `json:"event_type"`
	SessionID    string            `json:"session_id"`
	ToolName     string            `json:"tool_name"`
	Actor        string            `json:"actor"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata"`
	CreatedAt    time.Time         `json:"created_at"`
}

func NewAuditLog(eventType AuditEventType, invocationID string, req HookRequest, actor, description string) AuditLog {
	return AuditLog{
		ID:           uuid.NewString(),
		InvocationID: invocationID,
		EventType:    eventType,
		SessionID:    req.SessionID,
		ToolName:     req.ToolName,
		Actor:        actor,
		Description:  description,
		Metadata:     make(map[string]string),
		CreatedAt:    time.Now().UTC(),
	}
}

func (a AuditLog) WithMetadata(key, value string) AuditLog {
	meta := make(map[string]string, len(a.Metadata)+1)
	for k, v := range a.Metadata {
		meta[k] = v
	}
	meta[key] = value
	a.Metadata = meta
	return a
}

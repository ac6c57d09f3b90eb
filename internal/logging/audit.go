// Audit logging for safety-relevant events. Crisis-phrase detections,
// rejected requests, and manual overrides are appended as JSON lines to
// a dedicated file so school staff can review them independently of the
// operational logs.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Safety events
	AuditCrisisDetected AuditEventType = "crisis_detected"
	AuditHighDistress   AuditEventType = "high_distress"

	// Access events
	AuditAuthFailure AuditEventType = "auth_failure"
	AuditRateLimited AuditEventType = "rate_limited"

	// Classification events
	AuditManualOverride AuditEventType = "manual_override"
	AuditLLMFallback    AuditEventType = "llm_fallback"

	// Export events
	AuditExportRequest AuditEventType = "export_request"
)

// AuditEvent is one JSON line in the audit log. Student text is never
// written here, only identifiers and the detected condition.
type AuditEvent struct {
	Timestamp int64                  `json:"ts"` // Unix milliseconds
	EventType AuditEventType         `json:"event"`
	StudentID string                 `json:"student,omitempty"`
	ClassID   string                 `json:"class,omitempty"`
	RequestID string                 `json:"req,omitempty"`
	Emotion   string                 `json:"emotion,omitempty"`
	Score     float64                `json:"score,omitempty"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

var (
	auditFile *os.File
	auditMu   sync.Mutex
)

// InitAudit initializes the audit logging system. No-op when file
// logging is disabled.
func InitAudit() error {
	optsMu.RLock()
	dir := opts.Dir
	optsMu.RUnlock()
	if dir == "" {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil // Already initialized
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(dir, fmt.Sprintf("%s_audit.log", date))

	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file

	header := fmt.Sprintf("# Audit log started at %s\n", time.Now().Format(time.RFC3339))
	auditFile.WriteString(header)
	return nil
}

// CloseAudit closes the audit log file
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// AuditLog writes an audit event
func AuditLog(event AuditEvent) {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile == nil {
		return
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(event)
	if err == nil {
		auditFile.WriteString(string(data) + "\n")
	}
}

// =============================================================================
// CONVENIENCE METHODS FOR COMMON EVENTS
// =============================================================================

// CrisisDetected records a crisis-phrase short circuit for follow-up.
func CrisisDetected(studentID, classID, requestID string, score float64) {
	AuditLog(AuditEvent{
		EventType: AuditCrisisDetected,
		StudentID: studentID,
		ClassID:   classID,
		RequestID: requestID,
		Emotion:   "しんどい",
		Score:     score,
		Message:   fmt.Sprintf("crisis phrase detected for student %s", studentID),
	})
}

// AuthFailure records a rejected API key.
func AuthFailure(requestID, path string) {
	AuditLog(AuditEvent{
		EventType: AuditAuthFailure,
		RequestID: requestID,
		Message:   fmt.Sprintf("invalid API key on %s", path),
		Fields:    map[string]interface{}{"path": path},
	})
}

// RateLimited records a throttled request.
func RateLimited(requestID, remote string) {
	AuditLog(AuditEvent{
		EventType: AuditRateLimited,
		RequestID: requestID,
		Message:   fmt.Sprintf("rate limit exceeded for %s", remote),
		Fields:    map[string]interface{}{"remote": remote},
	})
}

// ManualOverride records a student picking their own label.
func ManualOverride(studentID, classID, requestID, emotion string) {
	AuditLog(AuditEvent{
		EventType: AuditManualOverride,
		StudentID: studentID,
		ClassID:   classID,
		RequestID: requestID,
		Emotion:   emotion,
		Message:   fmt.Sprintf("manual label %s for student %s", emotion, studentID),
	})
}

// LLMFallback records an external classifier failure recovered locally.
func LLMFallback(requestID string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	AuditLog(AuditEvent{
		EventType: AuditLLMFallback,
		RequestID: requestID,
		Message:   "external classifier unavailable, served lexicon-only",
		Fields:    map[string]interface{}{"error": msg},
	})
}

// ExportRequest records a data export.
func ExportRequest(requestID, classID, format string) {
	AuditLog(AuditEvent{
		EventType: AuditExportRequest,
		ClassID:   classID,
		RequestID: requestID,
		Message:   fmt.Sprintf("export %s for class %s", format, classID),
		Fields:    map[string]interface{}{"format": format},
	})
}

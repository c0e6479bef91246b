package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestAuditLogger_Success(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: true})

	ti := NewToolInvocation("create_lancedb_entity").WithTable("contacts").WithSpanContext(context.Background()).Complete(nil)
	al.LogToolInvocation(ti)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "tool_executed", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "create_lancedb_entity", entry["tool"])
	assert.Equal(t, "contacts", entry["table"])
	assert.Equal(t, true, entry["success"])
	assert.Equal(t, "audit", entry["component"])
	assert.NotContains(t, entry, "error")
	assert.Equal(t, StatusSuccess, ti.Status())
}

func TestAuditLogger_FailureHashesAccount(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: true})

	ti := NewToolInvocation("gmail_list_labels").WithAccount("jane@example.com").Complete(errors.New("token expired"))
	al.LogToolInvocation(ti)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "tool_failed", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "token expired", entry["error"])
	assert.NotContains(t, entry["account"], "jane")
	assert.Equal(t, StatusError, ti.Status())
}

func TestAuditLogger_IncludePII(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: true, IncludePII: true})

	al.LogToolInvocation(NewToolInvocation("gmail_list_labels").WithAccount("jane@example.com").Complete(nil))
	assert.Equal(t, "jane@example.com", decodeLine(t, &buf)["account"])
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})
	al.LogToolInvocation(NewToolInvocation("x").Complete(nil))
	assert.Zero(t, buf.Len())

	var nilLogger *AuditLogger
	nilLogger.LogToolInvocation(NewToolInvocation("x").Complete(nil))
}

package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/aura-assistant/aura/internal/logging"
)

// ToolInvocation is the audit record of one MCP tool call.
type ToolInvocation struct {
	Tool string

	// Account is the Google account for gmail/calendar tools. It is PII and
	// hashed unless the audit logger includes PII.
	Account string

	// Table is the vector table touched by vector tools.
	Table string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	TraceID   string
}

// NewToolInvocation starts timing an invocation of tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{Tool: tool, StartTime: time.Now()}
}

// WithAccount sets the Google account.
func (ti *ToolInvocation) WithAccount(account string) *ToolInvocation {
	ti.Account = account
	return ti
}

// WithTable sets the vector table.
func (ti *ToolInvocation) WithTable(table string) *ToolInvocation {
	ti.Table = table
	return ti
}

// WithSpanContext copies the trace ID from the span in ctx.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	return ti
}

// Complete stops timing. A non-nil err marks the invocation failed.
func (ti *ToolInvocation) Complete(err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = err == nil
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// Status returns StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

func (ti *ToolInvocation) attrs(includePII bool) []any {
	args := []any{
		logging.Tool(ti.Tool),
		logging.Duration(ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.Account != "" {
		if includePII {
			args = append(args, slog.String(logging.KeyAccount, ti.Account))
		} else {
			args = append(args, logging.Account(ti.Account))
		}
	}
	if ti.Table != "" {
		args = append(args, logging.Table(ti.Table))
	}
	if ti.TraceID != "" {
		args = append(args, slog.String("trace_id", ti.TraceID))
	}
	if ti.Error != "" {
		args = append(args, slog.String(logging.KeyError, ti.Error))
	}
	return args
}

// AuditLogger writes one structured line per tool invocation.
type AuditLogger struct {
	logger *slog.Logger
	config AuditLoggingConfig
}

// NewAuditLogger returns an AuditLogger writing to logger (slog.Default when nil).
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger.With(slog.String("component", "audit")), config: config}
}

// LogToolInvocation logs ti at Info on success and Warn on failure.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.config.Enabled {
		return
	}
	if ti.Success {
		al.logger.Info("tool_executed", ti.attrs(al.config.IncludePII)...)
	} else {
		al.logger.Warn("tool_failed", ti.attrs(al.config.IncludePII)...)
	}
}

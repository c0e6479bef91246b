package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aura-assistant/aura/internal/ddl"
	"github.com/aura-assistant/aura/internal/logging"
)

// Completer produces the next assistant message for a conversation.
type Completer interface {
	Complete(ctx context.Context, conv Conversation) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, conv Conversation) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, conv Conversation) (string, error) {
	return f(ctx, conv)
}

// DescriberConfig configures a Describer.
type DescriberConfig struct {
	// MaxRetries is the total number of completion attempts. Values below 1 mean 1.
	MaxRetries int

	// Dimension is the vector width used when validating the reply.
	Dimension int

	Logger logging.Logger

	// OnAttempt, when set, is called after every validated attempt with the
	// attempt number (1-based) and the validation error, nil on success.
	OnAttempt func(ctx context.Context, attempt int, err error)
}

// Describer turns natural language into validated table descriptions.
type Describer struct {
	completer Completer
	config    DescriberConfig
}

// NewDescriber returns a Describer backed by completer.
func NewDescriber(completer Completer, config DescriberConfig) *Describer {
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	if config.Dimension <= 0 {
		config.Dimension = VectorDimension
	}
	if config.Logger == nil {
		config.Logger = logging.Discard()
	}
	return &Describer{completer: completer, config: config}
}

// GenerateSchema runs a single Describer with the given retry budget.
func GenerateSchema(ctx context.Context, completer Completer, description string, maxRetries int) (*Description, error) {
	return NewDescriber(completer, DescriberConfig{MaxRetries: maxRetries}).Generate(ctx, description)
}

// MaxRetries returns the effective attempt budget.
func (d *Describer) MaxRetries() int {
	return d.config.MaxRetries
}

// Generate asks the completer for a description of text. Invalid replies are
// fed back to the model together with the failure; completer errors are
// returned as is.
func (d *Describer) Generate(ctx context.Context, text string) (*Description, error) {
	conv := NewConversation(
		Message{Role: RoleSystem, Content: SystemPrompt},
		Message{Role: RoleUser, Content: text},
	)

	var last error
	for attempt := 1; attempt <= d.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		reply, err := d.completer.Complete(ctx, conv)
		if err != nil {
			return nil, err
		}

		desc, err := d.validate(reply)
		if d.config.OnAttempt != nil {
			d.config.OnAttempt(ctx, attempt, err)
		}
		if err == nil {
			d.config.Logger.Debug("schema generated",
				logging.Table(desc.TableName), logging.Attempt(attempt))
			return desc, nil
		}

		d.config.Logger.Warn("schema generation attempt failed",
			logging.Attempt(attempt), logging.Err(err))
		last = err
		conv = conv.With(
			Message{Role: RoleAssistant, Content: reply},
			Message{Role: RoleUser, Content: retryPrompt(err)},
		)
	}

	return nil, &ExhaustedError{Attempts: d.config.MaxRetries, Last: last}
}

func (d *Describer) validate(reply string) (*Description, error) {
	desc, err := ParseDescription(reply)
	if err != nil {
		return nil, err
	}
	if _, err := Materialize(desc.Elements, d.config.Dimension); err != nil {
		return nil, err
	}
	return desc, nil
}

type rawElement struct {
	FieldName *string `json:"field_name"`
	DataType  *string `json:"data_type"`
	Embedded  *bool   `json:"embedded"`
}

type rawDescription struct {
	TableName   *string       `json:"table_name"`
	Description *string       `json:"description"`
	Elements    *[]rawElement `json:"schema_elements"`
}

// ParseDescription strictly decodes a model reply. Unknown keys and missing
// required keys are errors, as are unsafe table or field names. A surrounding
// markdown code fence is tolerated.
func ParseDescription(reply string) (*Description, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(stripFence(reply))))
	dec.DisallowUnknownFields()

	var raw rawDescription
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decoding reply: %v", ErrInvalidSchema, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrInvalidSchema)
	}

	var missing []string
	if raw.TableName == nil {
		missing = append(missing, "table_name")
	}
	if raw.Description == nil {
		missing = append(missing, "description")
	}
	if raw.Elements == nil {
		missing = append(missing, "schema_elements")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required keys: %s", ErrInvalidSchema, strings.Join(missing, ", "))
	}
	if err := ddl.ValidateIdentifier(*raw.TableName); err != nil {
		return nil, fmt.Errorf("%w: table_name: %v", ErrInvalidSchema, err)
	}

	desc := &Description{
		TableName:   *raw.TableName,
		Description: *raw.Description,
		Elements:    make([]Element, 0, len(*raw.Elements)),
	}
	var errs []error
	for i, re := range *raw.Elements {
		if re.FieldName == nil || re.DataType == nil || re.Embedded == nil {
			errs = append(errs, fmt.Errorf("%w: schema_elements[%d]: field_name, data_type and embedded are required", ErrInvalidSchema, i))
			continue
		}
		if err := ddl.ValidateIdentifier(*re.FieldName); err != nil {
			errs = append(errs, fmt.Errorf("%w: schema_elements[%d]: %v", ErrInvalidSchema, i, err))
			continue
		}
		desc.Elements = append(desc.Elements, Element{
			FieldName: *re.FieldName,
			DataType:  DataType(*re.DataType),
			Embedded:  *re.Embedded,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return desc, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

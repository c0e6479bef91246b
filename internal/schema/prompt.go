package schema

import (
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to answer with a table description.
var SystemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	var b strings.Builder
	b.WriteString(`You design table schemas for a vector database.
Turn the user's plain text description into a table description.
Mark a field as embedded when its text is useful for semantic search; embedded
fields are concatenated and turned into a single embedding vector.

### Supported Data Types:
`)
	for _, dt := range SupportedDataTypes() {
		fmt.Fprintf(&b, "- `%s`\n", dt)
	}
	fmt.Fprintf(&b, `
Do not declare a field named %q; it is added automatically.
Field and table names must match [a-zA-Z_][a-zA-Z0-9_]*.

Answer with a single JSON object and nothing else:
{"table_name": "...", "description": "...", "schema_elements": [{"field_name": "...", "data_type": "...", "embedded": false}]}
`, VectorColumn)
	return b.String()
}

// retryPrompt asks the model to correct its previous answer.
func retryPrompt(err error) string {
	return fmt.Sprintf("The previous schema generation failed with error: %v. "+
		"Please generate a new schema using only the supported data types and "+
		"ensure all field names and types are valid.", err)
}

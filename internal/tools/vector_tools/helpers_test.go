package vector_tools

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aura-assistant/aura/internal/filter"
	"github.com/aura-assistant/aura/internal/google"
)

func googleConfig(t *testing.T) google.Config {
	return google.Config{TokenDir: t.TempDir()}
}

// filterFor matches rows by name, or every row when name is empty.
func filterFor(t *testing.T, name string) filter.Predicate {
	t.Helper()
	if name == "" {
		return filter.Predicate{}
	}
	p, err := filter.Compile([]filter.Condition{{Field: "name", Operator: filter.Equals, Value: name}})
	require.NoError(t, err)
	return p
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aura-assistant/aura/internal/llm"
	"github.com/aura-assistant/aura/internal/logging"
	"github.com/aura-assistant/aura/internal/schema"
)

func newDescribeCmd() *cobra.Command {
	var (
		maxRetries int
		debugMode  bool
	)

	cmd := &cobra.Command{
		Use:   "describe <text>",
		Short: "Generate a table description from natural language",
		Long: `Ask the LLM to turn a natural language description into a table
description and print it as JSON, followed by the Arrow schema the table
would be created with. Nothing is stored.

Requires OPENAI_API_KEY.`,
		Example: `  aura describe "contacts with name, email, birthday and notes about how we met"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := llm.DefaultConfig()
			if config.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY is not set")
			}
			client, err := llm.New(config)
			if err != nil {
				return err
			}

			describer := schema.NewDescriber(client, schema.DescriberConfig{
				MaxRetries: maxRetries,
				Dimension:  config.Dimension,
				Logger:     logging.NewSlogAdapter(logging.NewLogger(os.Stderr, debugMode)),
			})
			return runDescribe(cmd.Context(), cmd.OutOrStdout(), describer, strings.Join(args, " "), config.Dimension)
		},
	}

	cmd.Flags().IntVar(&maxRetries, "max-schema-retries", schema.DefaultMaxRetries, "Attempts the LLM gets to produce a valid table description")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Log every attempt to stderr")

	return cmd
}

func runDescribe(ctx context.Context, out io.Writer, describer *schema.Describer, text string, dim int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	desc, err := describer.Generate(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}
	arrowSchema, err := schema.Materialize(desc.Elements, dim)
	if err != nil {
		return fmt.Errorf("failed to build Arrow schema: %w", err)
	}

	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode description: %w", err)
	}
	fmt.Fprintf(out, "%s\n\n%s\n", data, arrowSchema)
	return nil
}

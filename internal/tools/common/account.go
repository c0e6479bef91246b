package common

import (
	"github.com/aura-assistant/aura/internal/google"
)

// GetAccountFromArgs returns the explicit "account" argument, or the default
// account when it is missing or not a string.
func GetAccountFromArgs(args map[string]any) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return google.DefaultAccount
}

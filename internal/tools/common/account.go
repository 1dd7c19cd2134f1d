package common

import (
	"context"

	"github.com/teemow/calimport/internal/google"
)

// GetAccountFromArgs returns the "account" argument, or "default" when it
// is missing, empty or not a string.
func GetAccountFromArgs(_ context.Context, args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return google.DefaultAccount
}

// GetStringArg returns a string argument or def when it is absent or empty.
func GetStringArg(args map[string]interface{}, name, def string) string {
	if v, ok := args[name].(string); ok && v != "" {
		return v
	}
	return def
}

// GetBoolArg returns a boolean argument or def when it is absent.
func GetBoolArg(args map[string]interface{}, name string, def bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

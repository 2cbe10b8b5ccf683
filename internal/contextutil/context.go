package contextutil

import "context"

type contextKey string

const credentialsContextKey contextKey = "dd_credentials"

// Credentials is the per-request key pair used in hosted mode, where each
// MCP client supplies its own Datadog keys via request headers.
type Credentials struct {
	APIKey string
	AppKey string
}

// SetCredentials stores the credential pair in the context.
func SetCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsContextKey, creds)
}

// GetCredentials retrieves the credential pair from the context.
func GetCredentials(ctx context.Context) (Credentials, bool) {
	creds, ok := ctx.Value(credentialsContextKey).(Credentials)
	return creds, ok
}

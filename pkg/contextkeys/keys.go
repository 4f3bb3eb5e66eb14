package contextkeys

type contextKey string

const (
	UserIDKey   contextKey = "UserID"
	IdentityKey contextKey = "Identity"
)

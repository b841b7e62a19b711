package auth

// Service is the auth/session contract consumed by gateway and HTTP handlers.
type Service interface {
	Register(username, password string) (userID, sessionToken string, err error)
	Login(username, password string) (userID, sessionToken string, err error)
	ResolveSession(token string) (userID, username string, ok bool)

	// GuestSession issues a throwaway account for clients that connect
	// without registering.
	GuestSession(displayName string) (userID, sessionToken string)

	Logout(token string)
	Close() error
}

package domain

// Identity is the authenticated principal returned by the auth gate.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Session is what downstream handlers can read back from a signed token.
type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

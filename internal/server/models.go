package server

// HTTPError is the unified error body.
type HTTPError struct {
	Error string `json:"error"`
}

type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// DebateRequest starts a debate session.
type DebateRequest struct {
	Ticker   string `json:"ticker"`
	Question string `json:"question,omitempty"`
	Rounds   int    `json:"rounds,omitempty"`
}

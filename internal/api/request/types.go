package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateGameRequest is the request body for starting a game
type CreateGameRequest struct {
	Mode string `json:"mode"`
}

// JoinGameRequest is the request body for joining a friend game
type JoinGameRequest struct {
	Code string `json:"code"`
}

// ActionRequest is the request body for a question, guess or hint
type ActionRequest struct {
	Type            string `json:"type"`
	Content         string `json:"content,omitempty"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

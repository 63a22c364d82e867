package models

// User is the backend's user record. Online is authoritative at fetch
// time; live presence is tracked separately from websocket events.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Online      bool   `json:"online"`
	LastSeen    string `json:"lastSeen,omitempty"`
}

// Name returns the preferred display string for a user.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest is the POST /auth/register body.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,alphanum,min=3,max=20"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"max=50"`
}

// AuthResponse is returned by both auth endpoints.
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    User   `json:"user"`
	Message string `json:"message,omitempty"`
}

// SendMessageRequest is the POST /messages/send body.
type SendMessageRequest struct {
	ReceiverID string      `json:"receiverId"`
	Content    string      `json:"content"`
	Type       MessageType `json:"type"`
}

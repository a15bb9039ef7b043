package models

// AuthResponse is returned when a session token is issued
type AuthResponse struct {
	Token string `json:"token"`
	Owner string `json:"uid"`
}

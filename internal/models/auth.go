package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles issued by the console's identity provider.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleFaculty UserRole = "faculty"
	RoleStudent UserRole = "student"
)

// JWTClaims represents the JWT payload for access tokens issued to console users.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

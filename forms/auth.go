package forms

// Register is the payload for POST /auth/register
type Register struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// Login is the payload for POST /auth/login
type Login struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Refresh is the payload for POST /auth/refresh
type Refresh struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ChangePassword is the payload for PUT /auth/change-password
type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ForgotPassword is the payload for POST /auth/forgot-password
type ForgotPassword struct {
	Email string `json:"email" binding:"required"`
}

// ResetPassword is the payload for PUT /auth/reset-password/:token
type ResetPassword struct {
	Password string `json:"password" binding:"required"`
}

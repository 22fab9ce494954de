// ABOUTME: The dashboard's form structs and their validation rules
// ABOUTME: Field names match the HTML input names used by the templates

package validate

import (
	"strings"

	"github.com/2389/jobsforce-admin/internal/api"
)

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `form:"email" validate:"required,backend_email"`
	Password string `form:"password" validate:"required,min=6"`
}

// AgentForm creates an agent.
type AgentForm struct {
	Username    string `form:"username" validate:"required"`
	Email       string `form:"email" validate:"required,backend_email"`
	PhoneNumber string `form:"phone_number" validate:"required"`
	Password    string `form:"password" validate:"required,min=6"`
	Role        string `form:"role" validate:"required,oneof=selfapply userapply"`
}

// Request converts a validated form to the backend request.
func (f AgentForm) Request() api.CreateAgentRequest {
	return api.CreateAgentRequest{
		Username:    strings.TrimSpace(f.Username),
		Email:       strings.TrimSpace(f.Email),
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
		Password:    f.Password,
		Role:        api.Role(f.Role),
	}
}

// SettingsForm changes the admin's email and password.
type SettingsForm struct {
	Email           string `form:"email" validate:"required,backend_email"`
	CurrentPassword string `form:"current_password" validate:"required"`
	NewPassword     string `form:"new_password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=NewPassword"`
}

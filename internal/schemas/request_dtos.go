// Package schemas defines the request structures for the account operations.
package schemas

// RegistrationRequest is a struct that represents a registration request
// Email is required and must be a valid email
// Password is required and must be at least 8 characters and at most 72 bytes
// ConfirmPassword must match Password
type RegistrationRequest struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,bcrypt_len" sanitize:"-"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password" sanitize:"-"`
}

// LoginRequest is a struct that represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,bcrypt_len" sanitize:"-"`
}

// ActivationRequest is a struct that represents an activation request
// ActivationKey is required and must be a 20 character alphanumeric key
type ActivationRequest struct {
	ActivationKey string `json:"activation_key" validate:"required,alphanum,len=20"`
}

// PasswordResetRequest starts a password reset for the given email.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// PasswordResetCompletion finishes a password reset. The reset key is taken from the path.
type PasswordResetCompletion struct {
	Password        string `json:"password" validate:"required,min=8,bcrypt_len" sanitize:"-"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password" sanitize:"-"`
}

// ChangePasswordRequest is a struct that represents a PasswordChange request
type ChangePasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8,bcrypt_len" sanitize:"-"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password" sanitize:"-"`
}

// UpdateProfileRequest changes the optional name fields of an account.
// Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
}

// ProfileFields returns the profile mutation carried by the request.
func (r *UpdateProfileRequest) ProfileFields() ProfileFields {
	return ProfileFields{FirstName: r.FirstName, LastName: r.LastName}
}

// ProfileFields are the only account fields a profile update may touch.
type ProfileFields struct {
	FirstName *string
	LastName  *string
}

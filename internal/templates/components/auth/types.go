package auth

const redirectDelaySeconds = 2

type LoginFormData struct {
	Email string
	Error string
}

type RegisterFormData struct {
	Email       string
	FieldErrors map[string]string
	Error       string
	Success     string
	// RedirectTo is set after a successful registration.
	RedirectTo string
}

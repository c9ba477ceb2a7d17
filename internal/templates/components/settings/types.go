package settings

type SettingsFormData struct {
	Email       string
	Role        string
	PreviewURL  string
	FieldErrors map[string]string
	Error       string
	Success     string
}

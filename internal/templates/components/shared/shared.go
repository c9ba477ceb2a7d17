// Package shared holds the small pieces every form page uses.
package shared

type AlertKind string

const (
	AlertError   AlertKind = "error"
	AlertSuccess AlertKind = "success"
)

func alertClass(kind AlertKind) string {
	if kind == AlertSuccess {
		return "mb-4 p-3 rounded bg-green-100 text-green-800"
	}
	return "mb-4 p-3 rounded bg-red-100 text-red-800"
}

// InputClass highlights inputs that failed validation.
func InputClass(errs map[string]string, field string) string {
	if errs[field] != "" {
		return "w-full border rounded px-3 py-2 border-red-500"
	}
	return "w-full border rounded px-3 py-2 border-gray-300"
}

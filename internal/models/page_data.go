package models

// LoginPageData represents the data passed to the login template for rendering.
// It contains all information needed to display the login page with proper error
// handling and form repopulation.
type LoginPageData struct {
	// Title is the page title displayed in the browser tab and page header
	Title string

	// ShellClass is the merged class list for the centering layout shell
	ShellClass string

	// FormClass is the merged class list for the login card
	FormClass string

	// Username is the value to pre-populate in the form.
	// Used for repopulating the form after validation errors so users don't have to re-type.
	// The password is never repopulated.
	Username string

	// Errors holds the inline per-field messages. Nil or empty means no errors.
	Errors FieldErrors

	// State drives the submit control: disabled with a working label while submitting
	State SubmissionState

	// CSRFToken is the gorilla/csrf token for the form and script requests.
	// Empty when CSRF protection is disabled.
	CSRFToken string

	// CSRFFieldName is the name of the hidden form field carrying CSRFToken
	CSRFFieldName string

	// Version is the application version shown in the footer
	Version string
}

// SubmitDisabled reports whether the primary submit control must be rendered disabled
func (d LoginPageData) SubmitDisabled() bool {
	return d.State.IsSubmitting()
}

// SubmitLabel returns the label of the primary submit control
func (d LoginPageData) SubmitLabel() string {
	return d.State.SubmitLabel()
}

// FieldError returns the inline message for a field, or an empty string
func (d LoginPageData) FieldError(field string) string {
	if d.Errors == nil {
		return ""
	}
	return d.Errors[field]
}

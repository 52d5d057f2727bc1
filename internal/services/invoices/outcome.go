package invoices

import "github.com/jornathano/dashboard/internal/validation"

// State is what a form renders when an action does not navigate away.
type State struct {
	Errors  validation.FieldErrors `json:"errors,omitempty"`
	Message string                 `json:"message,omitempty"`

	// Failed is set when storage rejected the statement.
	Failed bool `json:"-"`
}

// Invalid reports whether the state carries field errors.
func (s State) Invalid() bool {
	return len(s.Errors) > 0
}

// Outcome is either a redirect to a path or a state to render.
type Outcome struct {
	redirect string
	state    State
}

func Redirect(path string) Outcome {
	return Outcome{redirect: path}
}

func Rendered(s State) Outcome {
	return Outcome{state: s}
}

// RedirectTo returns the navigation target, if the outcome is a redirect.
func (o Outcome) RedirectTo() (string, bool) {
	return o.redirect, o.redirect != ""
}

func (o Outcome) State() State {
	return o.state
}

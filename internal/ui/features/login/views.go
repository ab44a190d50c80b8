package login

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/launchpad/internal/auth"
	"github.com/leapstack-labs/launchpad/internal/ui/components"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = components.MustParse(templateFS, "templates/*.html")

// FormData is the state of the sign-in form.
type FormData struct {
	Email  string
	Errors auth.FieldErrors
	// Failed is set when valid input could not be signed in.
	Failed bool
}

// LoginView is the sign-in page.
func LoginView(page components.PageData, form FormData) templ.Component {
	return views.Page(page, "login", form)
}

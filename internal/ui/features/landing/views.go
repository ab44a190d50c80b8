package landing

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/launchpad/internal/demoapi"
	"github.com/leapstack-labs/launchpad/internal/ui/components"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = components.MustParse(templateFS, "templates/*.html")

// Modules are the product areas listed on the landing page.
var Modules = []string{"Dashboard", "Pipeline", "Connections", "Settings", "Secure Logout"}

// LandingData is the view model of the landing page.
type LandingData struct {
	Modules  []string
	Quote    *demoapi.Quote
	Products []demoapi.Product
}

// NewLandingData builds the view model from fetched highlights.
func NewLandingData(h demoapi.Highlights) LandingData {
	return LandingData{
		Modules:  Modules,
		Quote:    h.Quote,
		Products: h.Products,
	}
}

// LandingView is the full landing page.
func LandingView(page components.PageData, data LandingData) templ.Component {
	return views.Page(page, "landing", data)
}

// QuoteCard is the patchable quote card.
func QuoteCard(data LandingData) templ.Component {
	return views.Fragment("landing-quote", data)
}

// HighlightCards is the patchable product highlight grid.
func HighlightCards(data LandingData) templ.Component {
	return views.Fragment("landing-highlights", data)
}

package pipelines

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/launchpad/internal/ui/components"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = components.MustParse(templateFS, "templates/*.html")

// ListView is the full pipeline list page.
func ListView(page components.PageData, data ListData) templ.Component {
	return views.Page(page, "pipelines", data)
}

// PipelinesLive is the patchable counts and table of the list page.
func PipelinesLive(data ListData) templ.Component {
	return views.Fragment("pipelines-live", data)
}

// DetailView is the full page of one pipeline.
func DetailView(page components.PageData, data DetailData) templ.Component {
	return views.Page(page, "pipeline-detail", data)
}

// DetailLive is the patchable status panel of the detail page.
func DetailLive(data DetailData) templ.Component {
	return views.Fragment("pipeline-live", data)
}

// DetailGone replaces the status panel once the pipeline is removed.
func DetailGone() templ.Component {
	return views.Fragment("pipeline-gone", nil)
}

// NotFoundView is shown for unknown pipeline ids.
func NotFoundView(page components.PageData) templ.Component {
	return views.Page(page, "pipeline-not-found", nil)
}

package landing

import (
	"context"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/launchpad/internal/demoapi"
	"github.com/leapstack-labs/launchpad/internal/ui/features/common"
)

// Highlighter supplies the demo content of the landing page.
type Highlighter interface {
	Highlights(ctx context.Context) demoapi.Highlights
}

// Handlers provides HTTP handlers for the landing feature.
type Handlers struct {
	demo Highlighter
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(demo Highlighter) *Handlers {
	return &Handlers{demo: demo}
}

// LandingPage renders the landing page with the quote and highlights in
// their loading state. HighlightsUpdates fills them in.
func (h *Handlers) LandingPage(w http.ResponseWriter, r *http.Request) {
	page := common.Shell(r, "Welcome", "/highlights")
	common.Render(w, r, http.StatusOK, LandingView(page, NewLandingData(demoapi.Highlights{})))
}

// HighlightsUpdates fetches the demo content once and patches whatever
// arrived. Parts that failed keep their loading state.
func (h *Handlers) HighlightsUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := NewLandingData(h.demo.Highlights(r.Context()))
	if data.Quote != nil {
		if err := sse.PatchElementTempl(QuoteCard(data)); err != nil {
			_ = sse.ConsoleError(err)
		}
	}
	if len(data.Products) > 0 {
		if err := sse.PatchElementTempl(HighlightCards(data)); err != nil {
			_ = sse.ConsoleError(err)
		}
	}
}

package cli

import (
	"net/http"

	"github.com/mwiater/pagemcp/internal/appconfig"
	"github.com/mwiater/pagemcp/internal/catalog"
	"github.com/mwiater/pagemcp/internal/graph"
	"github.com/mwiater/pagemcp/internal/page"
	"github.com/mwiater/pagemcp/internal/tools"
)

// buildRegistry wires the Graph client, the page manager and the tool catalog.
func buildRegistry(cfg appconfig.Config) (*tools.Registry, error) {
	client := graph.New(cfg.Graph.BaseURL, cfg.Graph.PageID, cfg.Graph.AccessToken).
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout()})
	return catalog.New(page.NewManager(client), tools.WithStrictArguments(cfg.StrictArguments))
}

// Package careerserver exposes the opportunity discovery engine over MCP:
// opportunity_discover, citation_resolve, and the saved-opportunity tools.
package careerserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ghsmc/intro-v2-sub000/internal/engine/discover"
)

// Package-level singletons, set from main.go.
var (
	pipeline   *discover.Pipeline
	savedStore *discover.SavedStore
)

// SetPipeline sets the package-level discovery pipeline.
func SetPipeline(p *discover.Pipeline) { pipeline = p }

// SetSavedStore sets the package-level saved-opportunity store (may be nil).
func SetSavedStore(s *discover.SavedStore) { savedStore = s }

// RegisterTools registers all opportunity tools on the given MCP server.
func RegisterTools(server *mcp.Server) {
	registerOpportunityDiscover(server)
	registerCitationResolve(server)
	registerOpportunitySave(server)
	registerOpportunitySavedList(server)
	registerOpportunitySavedUpdate(server)
}

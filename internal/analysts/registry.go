package analysts

import (
	"github.com/dyike/cortexfund/consts"
	"github.com/dyike/cortexfund/internal/registry"
)

// Registered builds the closed analyst registry (internal/registry.Registry)
// from every analyst body in this package, keyed exactly as consts' analyst
// keys so a request's selected_agents intersects directly against it per
// spec §4.4. Order fixes display/iteration order independent of the
// request's own ordering.
func Registered() *registry.Registry {
	return registry.New(
		registry.Entry{
			Key:         consts.AnalystTechnical,
			DisplayName: consts.AnalystDisplayNames[consts.AnalystTechnical],
			Order:       1,
			Fn:          Technical,
		},
		registry.Entry{
			Key:         consts.AnalystFundamentals,
			DisplayName: consts.AnalystDisplayNames[consts.AnalystFundamentals],
			Order:       2,
			Fn:          Fundamentals,
		},
		registry.Entry{
			Key:         consts.AnalystSentiment,
			DisplayName: consts.AnalystDisplayNames[consts.AnalystSentiment],
			Order:       3,
			Fn:          Sentiment,
		},
		registry.Entry{
			Key:         consts.AnalystWarrenBuffett,
			DisplayName: consts.AnalystDisplayNames[consts.AnalystWarrenBuffett],
			Order:       4,
			Fn:          WarrenBuffett,
		},
	)
}

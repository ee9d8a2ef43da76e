package consts

// Analyst registry keys. An analyst's DAG node id and its analyst_signals
// map key are the registry key itself, with no suffix.
const (
	AnalystBenGraham            = "ben_graham"
	AnalystBillAckman           = "bill_ackman"
	AnalystCathieWood           = "cathie_wood"
	AnalystCharlieMunger        = "charlie_munger"
	AnalystMichaelBurry         = "michael_burry"
	AnalystPeterLynch           = "peter_lynch"
	AnalystPhilFisher           = "phil_fisher"
	AnalystStanleyDruckenmiller = "stanley_druckenmiller"
	AnalystWarrenBuffett        = "warren_buffett"
	AnalystTechnical            = "technical_analyst"
	AnalystFundamentals         = "fundamentals_analyst"
	AnalystSentiment            = "sentiment_analyst"
	AnalystValuation            = "valuation_analyst"
)

// Fixed DAG nodes, always present regardless of the selected analyst set.
// These double as both the node name and the analyst_signals map key for
// that stage.
const (
	NodeStart            = "start_node"
	NodeRiskManagement   = "risk_management_agent"
	NodePortfolioManager = "portfolio_management_agent"
)

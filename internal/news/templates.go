package news

import "github.com/zappabad/marketrush/internal/market"

// Template fixes the text and weight of a news item.
type Template struct {
	Title     string
	Content   string
	Sentiment Sentiment
	Magnitude float64
}

var generalPool = []Template{
	{"Markets open higher amid positive economic data", "Strong payroll numbers lift sentiment across the board.", Positive, 0.4},
	{"Central bank maintains current policy stance", "Rates are left unchanged; traders shrug.", Neutral, 0.2},
	{"Inflation print comes in hot", "Consumer prices rose faster than expected last month.", Negative, 0.5},
	{"Consumer spending remains strong", "Retail sales beat forecasts for a third straight month.", Positive, 0.3},
	{"Trade tensions flare up again", "New tariffs announced on a range of imported goods.", Negative, 0.6},
	{"Infrastructure bill gains momentum", "Lawmakers signal bipartisan support for new spending.", Positive, 0.5},
	{"Fed signals surprise rate cut", "Officials hint at easing sooner than markets priced in.", Positive, 0.8},
	{"Recession fears grip investors", "Yield curve inversion deepens as growth forecasts are cut.", Negative, 0.8},
	{"Quiet session as traders await data", "Volumes are thin ahead of tomorrow's releases.", Neutral, 0.1},
}

var crisisPool = []Template{
	{"Global banking crisis erupts", "A major lender collapses, triggering contagion fears worldwide.", Negative, 0.9},
	{"Pandemic lockdowns announced", "Governments order sweeping shutdowns; supply chains seize up.", Negative, 0.85},
	{"Sovereign debt default shocks markets", "A G20 economy misses a bond payment.", Negative, 0.8},
	{"Coordinated global stimulus unleashed", "Central banks act together with unprecedented liquidity.", Positive, 0.8},
}

var classPools = map[market.Class][]Template{
	market.ClassIndex: {
		{"Earnings beat expectations across sectors", "Blue chips report record quarterly profits.", Positive, 0.5},
		{"Tech giant misses revenue targets", "Shares of the index heavyweight slide after hours.", Negative, 0.6},
		{"Corporate buybacks reach record levels", "Companies return unprecedented cash to shareholders.", Positive, 0.4},
		{"Accounting scandal rocks index constituent", "Regulators open a probe into misstated earnings.", Negative, 0.8},
		{"Index rebalancing announced", "Several names will rotate in and out next month.", Neutral, 0.2},
	},
	market.ClassGold: {
		{"Central banks ramp up gold purchases", "Reserve managers add to bullion holdings at record pace.", Positive, 0.6},
		{"Gold slips as dollar strengthens", "A firmer greenback weighs on precious metals.", Negative, 0.4},
		{"Safe-haven demand surges", "Investors flock to gold as geopolitical risk rises.", Positive, 0.8},
		{"Major gold discovery reported", "A vast new deposit could expand supply.", Negative, 0.6},
		{"Jewelry demand steady", "Seasonal buying holds up in key markets.", Neutral, 0.2},
	},
	market.ClassOil: {
		{"OPEC announces production cuts", "Cartel members agree to curb output.", Positive, 0.8},
		{"Inventories build unexpectedly", "Stockpiles rise for a third week.", Negative, 0.5},
		{"Pipeline outage disrupts supply", "A key export route is shut for repairs.", Positive, 0.6},
		{"Demand outlook downgraded", "Forecasters trim consumption estimates for next year.", Negative, 0.6},
		{"Refinery maintenance season begins", "Several plants go offline as scheduled.", Neutral, 0.2},
	},
	market.ClassCrypto: {
		{"Spot ETF approval rumored", "Insiders say regulators are close to a decision.", Positive, 0.8},
		{"Major exchange hacked", "Hundreds of millions in coins reported stolen.", Negative, 0.9},
		{"Institutional adoption grows", "A large payments firm adds crypto settlement.", Positive, 0.5},
		{"Regulators announce crackdown", "New rules target unregistered trading venues.", Negative, 0.7},
		{"Network upgrade completes smoothly", "The long-awaited protocol change goes live.", Positive, 0.4},
	},
}

// PoolFor returns the template pool for an asset class, falling back to the general pool.
func PoolFor(class market.Class) []Template {
	if pool, ok := classPools[class]; ok {
		return pool
	}
	return generalPool
}

// GeneralPool returns the market-wide template pool.
func GeneralPool() []Template {
	return generalPool
}

// CrisisPool returns the crisis template pool.
func CrisisPool() []Template {
	return crisisPool
}

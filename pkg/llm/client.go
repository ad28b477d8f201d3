package llm

type Input struct {
	Title string
	Body  string
}

// Analysis is the classification of one article. It enriches the rule-based
// ticker match; it never rewrites or summarizes the article text.
type Analysis struct {
	NewsType          string
	Region            string
	Topics            []string
	RelatedMarkets    []string
	MacroSensitive    bool
	LikelyToInfluence bool
	InfluenceReason   string
}

type Analyzer interface {
	Analyze(input Input) (*Analysis, error)
}

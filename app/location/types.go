package location

// Method identifies which tier produced a location result.
type Method string

const (
	MethodPatternMatch Method = "pattern_match"
	MethodKnownCity    Method = "known_city"
	MethodCausalClause Method = "causal_clause"
	MethodLLMBatch     Method = "llm_batch"
	MethodLLMFailed    Method = "llm_failed"
	MethodFeedTag      Method = "feed_tag"
	MethodNone         Method = "none"
)

type Confidence string

const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceNone    Confidence = "none"
	ConfidencePending Confidence = "pending"
)

// Result is an immutable resolved location. Pending results exist only while
// an entry waits for a batched LLM resolution and must be replaced before the
// entry is finalized.
type Result struct {
	City       string
	Country    string
	Region     string
	Latitude   *float64
	Longitude  *float64
	Method     Method
	Confidence Confidence
	Pending    bool
}

// newResult builds a Result enforcing the confidence invariant: high is only
// reachable from deterministic tiers, LLM-derived results cap at medium.
func newResult(method Method, confidence Confidence, city, country, region string) Result {
	if confidence == ConfidenceHigh && method != MethodPatternMatch && method != MethodKnownCity {
		confidence = ConfidenceMedium
	}
	return Result{
		City:       city,
		Country:    country,
		Region:     region,
		Method:     method,
		Confidence: confidence,
	}
}

func noneResult() Result {
	return Result{Method: MethodNone, Confidence: ConfidenceNone}
}

func llmFailedResult() Result {
	return Result{Method: MethodLLMFailed, Confidence: ConfidenceNone}
}

func pendingResult() Result {
	return Result{Method: MethodNone, Confidence: ConfidencePending, Pending: true}
}

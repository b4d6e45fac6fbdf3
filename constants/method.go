package constants

// ExtractionMethod records which strategies contributed to a record.
type ExtractionMethod string

const (
	MethodRegex  ExtractionMethod = "regex"  // rule tables only
	MethodHybrid ExtractionMethod = "hybrid" // rule tables plus generative fallback
)

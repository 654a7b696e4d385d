package constraints

// Source is the provenance of an evaluation result: which layer answered.
type Source string

const (
	SourceOverride Source = "override"
	SourceFlag     Source = "flag"
	SourceDefault  Source = "default"
)

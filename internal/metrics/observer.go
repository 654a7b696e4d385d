package metrics

type EvaluationObserver interface {
	RecordEvaluation(source string)
	RecordFlagCreated()
	RecordOverrideWrite()
	RecordOverrideDelete()
}

package hblpn

// Reporter observes a search for display purposes. No decision depends on it.
type Reporter interface {
	// CandidateEvaluated is called once per tested candidate. With parallel
	// workers calls may arrive concurrently and out of order.
	CandidateEvaluated(candidate BitVector, passed bool)

	// Finished is called once at the end of a run with the result and the
	// oracle's true secret.
	Finished(result *SearchResult, secret BitVector)
}

// ClassifierReporter additionally observes classifier trials.
type ClassifierReporter interface {
	Reporter
	TrialCompleted(trial *ClassifierTrial)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) CandidateEvaluated(BitVector, bool) {}
func (NopReporter) Finished(*SearchResult, BitVector) {}
func (NopReporter) TrialCompleted(*ClassifierTrial) {}

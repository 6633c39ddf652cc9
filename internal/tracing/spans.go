package tracing

// Span names.
const (
	SpanSessionRun = "session.run"
	SpanHTTPPrefix = "http."
)

// Attribute keys.
const (
	AttrIntention       = "breath.intention"
	AttrPatternName     = "breath.pattern"
	AttrCycles          = "breath.cycles"
	AttrCyclesCompleted = "breath.cycles_completed"
	AttrTotalSeconds    = "breath.total_seconds"
	AttrOutcome         = "session.outcome"
	AttrUserID          = "zen.user_id"
	AttrHTTPMethod      = "http.method"
	AttrHTTPRoute       = "http.route"
	AttrHTTPStatus      = "http.status_code"
)

// Span events.
const (
	EventPhaseChanged    = "phase.changed"
	EventCycleCompleted  = "cycle.completed"
	EventObserverFailed  = "observer.failed"
	AttrPhase            = "breath.phase"
	AttrCycle            = "breath.cycle"
	AttrObserverErrorMsg = "error.message"
)

// Session outcomes recorded under AttrOutcome.
const (
	OutcomeCompleted = "completed"
	OutcomeAbandoned = "abandoned"
)

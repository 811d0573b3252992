package observability

// Metric name prefixes
const (
	MetricPrefix = "vpbot"
)

// Metric names
const (
	// Accrual metrics
	VPAwardedTotal       = MetricPrefix + ".vp.awarded_total"
	AccrualTicksTotal    = MetricPrefix + ".accrual.ticks_total"
	AccrualFailuresTotal = MetricPrefix + ".accrual.failures_total"
	AccrualTickDuration  = MetricPrefix + ".accrual.tick_duration"
	BonusChannelPresence = MetricPrefix + ".presence.bonus_channel"
	VoiceChannelPresence = MetricPrefix + ".presence.voice_users"

	// Command metrics
	CommandsTotal      = MetricPrefix + ".commands.total"
	VerificationsTotal = MetricPrefix + ".verifications.total"

	// NATS metrics
	EventsPublishedTotal = MetricPrefix + ".nats.events_published_total"
)

// Label keys
const (
	LabelCommand   = "command"
	LabelResult    = "result"
	LabelSource    = "source"
	LabelEventType = "event_type"
)

// Result values
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Verification results
const (
	VerificationVerified        = "verified"
	VerificationInvalidCode     = "invalid_code"
	VerificationAlreadyVerified = "already_verified"
	VerificationGrowIDTaken     = "growid_taken"
	VerificationError           = "error"
)

package observability

// Metric name prefixes
const (
	MetricPrefix = "apploto"
)

// Metric names
const (
	// Lottery metrics
	LotteriesClosedTotal   = MetricPrefix + ".lotteries.closed_total"
	DrawsFinalizedTotal    = MetricPrefix + ".draws.finalized_total"
	EntriesRegisteredTotal = MetricPrefix + ".entries.registered_total"
	WinningsDistributed    = MetricPrefix + ".draws.winnings_distributed"

	// NATS metrics
	NATSMessagesReceivedTotal  = MetricPrefix + ".nats.messages_received_total"
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Notification metrics
	NotificationsSentTotal = MetricPrefix + ".notifications.sent_total"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelChannel   = "channel"
	LabelOutcome   = "outcome"
)

// Draw types
const (
	DrawTypeLottery    = "lottery"
	DrawTypeSimulation = "simulation"
)

// Notification channels
const (
	ChannelEmail   = "email"
	ChannelDiscord = "discord"
)

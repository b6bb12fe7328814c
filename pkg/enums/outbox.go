package enums

// OutboxEventType names the domain events written through the outbox.
type OutboxEventType string

const (
	EventTransactionCreated OutboxEventType = "transaction.created"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateTransaction OutboxAggregateType = "transaction"
)

package robotorder

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("robotorder/services/robotorder")
var meter = otel.Meter("robotorder/services/robotorder")

var submissionAttempts, _ = meter.Int64Counter(
	"robotorder.submission.attempts",
)
var ordersProcessed, _ = meter.Int64Counter(
	"robotorder.orders.processed",
)

package structs

const (
	AttributeFailureReason     = "FailureReason"
	AttributeOriginalTimestamp = "OriginalTimestamp"
	AttributeRetryAttempt      = "RetryAttempt"
)

// DeadLetterEnvelope carries a failed message to the application dead-letter
// queue. Body is the original queue message, unchanged, so a replay is a plain
// re-enqueue of Body.
type DeadLetterEnvelope struct {
	Body              string
	FailureReason     string
	OriginalTimestamp string
	RetryAttempt      string
}

func (e DeadLetterEnvelope) Attributes() map[string]string {
	return map[string]string{
		AttributeFailureReason:     e.FailureReason,
		AttributeOriginalTimestamp: e.OriginalTimestamp,
		AttributeRetryAttempt:      e.RetryAttempt,
	}
}

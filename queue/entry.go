package queue

// entry pairs a receiver with its envelope so a queue can forward both
// halves to a DeadLetterSink without the caller having to re-supply the
// receiver at cleanup/timeout time.
type entry struct {
	receiver any
	envelope any
}

package bollywood

// Concrete system messages recognized by the mailbox core and the engine.
// The mailbox core special-cases Terminate (drives the mailbox to Closed)
// and Suspend/Resume (drives the Status suspend count), always after the
// actor's SystemInvoke has had a chance to see the message. Everything
// else is opaque to the mailbox and is purely the actor's business.
type (
	// Create notifies a freshly spawned actor that it may begin work.
	Create struct{ Linked }

	// Suspend asks the mailbox to stop delivering user messages until a
	// matching Resume arrives.
	Suspend struct{ Linked }

	// Resume reverses one prior Suspend.
	Resume struct{ Linked }

	// Terminate requests that the mailbox close permanently. No further
	// user messages will be delivered after it is processed.
	Terminate struct{ Linked }

	// Watch registers Watcher to receive a Terminated notification once
	// this actor's mailbox becomes Closed (C9 supervision hook).
	Watch struct {
		Linked
		Watcher *PID
	}

	// Unwatch cancels a prior Watch.
	Unwatch struct {
		Linked
		Watcher *PID
	}

	// Failed is delivered to a supervisor (conventionally, the parent)
	// when a child actor's invocation panics or returns a fatal error.
	// Restart/stop/escalate strategy is outside this module's scope
	// — only the notification is wired.
	Failed struct {
		Linked
		Child *PID
		Reason interface{}
	}

	// Terminated is delivered to watchers once a watched mailbox closes.
	Terminated struct {
		Linked
		Who *PID
	}
)

// NewCreate returns a virgin Create message.
func NewCreate() SystemMessage { return bind(&Create{}) }

// NewSuspend returns a virgin Suspend message.
func NewSuspend() SystemMessage { return bind(&Suspend{}) }

// NewResume returns a virgin Resume message.
func NewResume() SystemMessage { return bind(&Resume{}) }

// NewTerminate returns a virgin Terminate message.
func NewTerminate() SystemMessage { return bind(&Terminate{}) }

// NewWatch returns a virgin Watch message for the given watcher.
func NewWatch(watcher *PID) SystemMessage { return bind(&Watch{Watcher: watcher}) }

// NewUnwatch returns a virgin Unwatch message for the given watcher.
func NewUnwatch(watcher *PID) SystemMessage { return bind(&Unwatch{Watcher: watcher}) }

// NewFailed returns a virgin Failed message describing a child's failure.
func NewFailed(child *PID, reason interface{}) SystemMessage {
	return bind(&Failed{Child: child, Reason: reason})
}

// NewTerminated returns a virgin Terminated message naming who closed.
func NewTerminated(who *PID) SystemMessage { return bind(&Terminated{Who: who}) }

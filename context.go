package bollywood

// Context is handed to an Actor on every invocation, giving it access to
// its own identity, its sender, the message itself, and the engine it runs
// under. It intentionally knows nothing about the mailbox's internal
// state — this keeps the actor execution object's contract limited to
// Invoke/SystemInvoke.
type Context interface {
	Engine() *Engine
	Self() *PID
	Sender() *PID
	Message() interface{}
}

// context is the concrete Context built fresh for every invocation.
type context struct {
	engine  *Engine
	self    *PID
	sender  *PID
	message interface{}
}

func (c *context) Engine() *Engine     { return c.engine }
func (c *context) Self() *PID          { return c.self }
func (c *context) Sender() *PID        { return c.sender }
func (c *context) Message() interface{} { return c.message }

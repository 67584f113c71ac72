package bollywood

import "sync/atomic"

// SystemMessage is a control command delivered out-of-band from, and with
// priority over, user messages. Every concrete system message embeds
// Linked, which supplies the intrusive singly-linked `next` pointer the
// lock-free system queue threads messages through — no message is ever
// boxed in a separate list node.
type SystemMessage interface {
	systemLink() *Linked
}

// Linked is embedded by every concrete SystemMessage. It gives the message
// its place in the intrusive list. `owner` lets the list walk back from a
// link node to the message carrying it; it is set once, by bind, right
// after construction.
type Linked struct {
	next  *Linked
	owner SystemMessage
}

func (l *Linked) systemLink() *Linked { return l }

// bind associates msg's embedded Linked with msg itself. Every constructor
// for a concrete SystemMessage must call bind before returning.
func bind(msg SystemMessage) SystemMessage {
	msg.systemLink().owner = msg
	return msg
}

// unlinked reports whether msg's next pointer is nil, the virgin state
// required before enqueue and restored after a message has been consumed.
// The earliest message still in a list (its tail) also has a nil next, so
// a message that was enqueued onto an empty list reports true as well.
func unlinked(msg SystemMessage) bool {
	return msg.systemLink().next == nil
}

// unlink clears msg's next pointer, returning it to the virgin state.
func unlink(msg SystemMessage) {
	msg.systemLink().next = nil
}

// noMessageSentinel is the distinguished value installed as the list head
// once a mailbox's system queue is permanently closed. Its identity, not
// its content, is what callers test for — it owns no real message.
var noMessageSentinel = &Linked{}

func isClosedSentinel(l *Linked) bool { return l == noMessageSentinel }

// systemMessageList is the per-mailbox lock-free LIFO of pending system
// messages. The zero value is an empty, open list.
type systemMessageList struct {
	head atomic.Pointer[Linked]
}

// enqueue links msg onto the head of the list, or diverts it to
// deadLetters if the list has already been closed. Precondition: msg is
// unlinked.
func (q *systemMessageList) enqueue(msg SystemMessage, deadLetters *Mailbox) {
	l := bind(msg).systemLink()
	for {
		head := q.head.Load()
		if isClosedSentinel(head) {
			unlink(msg)
			if deadLetters != nil {
				deadLetters.systemEnqueueDirect(msg)
			}
			return
		}
		l.next = head
		if q.head.CompareAndSwap(head, l) {
			return
		}
		l.next = nil
	}
}

// drain atomically swaps the list head for newHead (nil to reopen empty,
// noMessageSentinel to seal it permanently) and returns the previously
// enqueued messages in causal order: the order in which their enqueue
// calls returned, earliest first.
func (q *systemMessageList) drain(newHead *Linked) []SystemMessage {
	old := q.head.Swap(newHead)
	if old == nil || isClosedSentinel(old) {
		return nil
	}
	var lifo []SystemMessage
	for n := old; n != nil; n = n.next {
		lifo = append(lifo, n.owner)
	}
	for i, j := 0, len(lifo)-1; i < j; i, j = i+1, j-1 {
		lifo[i], lifo[j] = lifo[j], lifo[i]
	}
	return lifo
}

// close seals the list against further enqueues; it is equivalent to
// draining with the closed sentinel installed as the new head.
func (q *systemMessageList) close() []SystemMessage {
	return q.drain(noMessageSentinel)
}

// hasMessages reports whether the list currently holds any undrained
// messages. It is a hint, not a synchronization point.
func (q *systemMessageList) hasMessages() bool {
	head := q.head.Load()
	return head != nil && !isClosedSentinel(head)
}

package bollywood

import "fmt"

// PID (Process ID) is a lightweight, comparable reference to a single actor
// instance. It is deliberately opaque: the address/routing model an actor
// reference lives above this package — PID only needs to be unique within
// one Engine and usable as a map key.
type PID struct {
	ID string
}

// String returns the string representation of the PID.
func (pid *PID) String() string {
	if pid == nil {
		return "<nil>"
	}
	return pid.ID
}

func newPID(id uint64) *PID {
	return &PID{ID: fmt.Sprintf("actor-%d", id)}
}

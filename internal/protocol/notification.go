package protocol

import "fmt"

// Notification kinds carried in Notification.Type.
const (
	NotifyWarning   = "warning"
	NotifyForeshock = "foreshock"
	NotifyComplete  = "complete"
)

// Notification is the earthquake packet sent to one player or broadcast.
type Notification struct {
	Type      string `json:"type"`
	Magnitude int    `json:"magnitude"`
	DaysUntil int    `json:"days_until"`
	Count     int    `json:"count"`
}

func Warning(magnitude, daysUntil int) Notification {
	return Notification{Type: NotifyWarning, Magnitude: magnitude, DaysUntil: daysUntil}
}

func Foreshock(magnitude int) Notification {
	return Notification{Type: NotifyForeshock, Magnitude: magnitude}
}

func Complete(magnitude, count int) Notification {
	return Notification{Type: NotifyComplete, Magnitude: magnitude, Count: count}
}

// Text renders the chat line a client shows for the packet. Unknown types render empty.
func (n Notification) Text() string {
	switch n.Type {
	case NotifyWarning:
		if n.DaysUntil == 0 {
			return fmt.Sprintf("Seismologists warn of a magnitude %d earthquake later today.", n.Magnitude)
		}
		return fmt.Sprintf("Seismologists warn of a magnitude %d earthquake in %d day(s).", n.Magnitude, n.DaysUntil)
	case NotifyForeshock:
		switch {
		case n.Magnitude >= 7:
			return "The ground lurches violently. A major earthquake is imminent!"
		case n.Magnitude >= 4:
			return "The ground trembles. Something big is building below."
		default:
			return "You feel a faint tremor underfoot."
		}
	case NotifyComplete:
		return fmt.Sprintf("%d magnitude %d earthquake(s) have ended. The dust settles.", n.Count, n.Magnitude)
	}
	return ""
}

// QuakeMsg wraps a Notification for the websocket channel.
type QuakeMsg struct {
	Type   string       `json:"type"`
	Packet Notification `json:"packet"`
}

func NewQuakeMsg(n Notification) QuakeMsg {
	return QuakeMsg{Type: TypeQuake, Packet: n}
}

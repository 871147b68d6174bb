package scan

// EventKind identifies which of the three Stabilizer events fired.
type EventKind int

const (
	EventUpdate EventKind = iota
	EventSuccess
	EventFailed
)

// String returns the lower-case event name used in logs and tool output.
func (k EventKind) String() string {
	switch k {
	case EventUpdate:
		return "update"
	case EventSuccess:
		return "success"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is a Stabilizer output tagged with its kind.
type Event struct {
	Kind        EventKind
	Observation Observation
}

// Subscriber receives Stabilizer events.
type Subscriber interface {
	Update(Observation)
	Success(Observation)
	Failed(Observation)
}

// Dispatcher runs fn on the context the embedding application designates
// for event delivery, for example a UI loop. It must run fn exactly once
// and preserve submission order.
type Dispatcher func(fn func())

// Inline is the default Dispatcher; it runs fn on the caller's goroutine.
func Inline(fn func()) { fn() }

// SubscriberFuncs adapts plain functions to Subscriber. Nil fields are
// skipped.
type SubscriberFuncs struct {
	OnUpdate  func(Observation)
	OnSuccess func(Observation)
	OnFailed  func(Observation)
}

func (f SubscriberFuncs) Update(o Observation) {
	if f.OnUpdate != nil {
		f.OnUpdate(o)
	}
}

func (f SubscriberFuncs) Success(o Observation) {
	if f.OnSuccess != nil {
		f.OnSuccess(o)
	}
}

func (f SubscriberFuncs) Failed(o Observation) {
	if f.OnFailed != nil {
		f.OnFailed(o)
	}
}

// EventChannel adapts a channel to Subscriber. Sends block, so the channel
// must be drained or buffered generously.
type EventChannel chan<- Event

func (c EventChannel) Update(o Observation)  { c <- Event{Kind: EventUpdate, Observation: o} }
func (c EventChannel) Success(o Observation) { c <- Event{Kind: EventSuccess, Observation: o} }
func (c EventChannel) Failed(o Observation)  { c <- Event{Kind: EventFailed, Observation: o} }

func deliver(s Subscriber, e Event) {
	switch e.Kind {
	case EventUpdate:
		s.Update(e.Observation)
	case EventSuccess:
		s.Success(e.Observation)
	case EventFailed:
		s.Failed(e.Observation)
	}
}

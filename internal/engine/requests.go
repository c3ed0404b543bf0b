package engine

import "github.com/1broseidon/oneko/internal/geometry"

// RequestKind names a geometry lookup the engine needs from the host.
type RequestKind int

const (
	RequestSleepTarget RequestKind = iota
	RequestRoamBand
)

// String returns the string representation of the request kind
func (k RequestKind) String() string {
	switch k {
	case RequestSleepTarget:
		return "sleep-target"
	case RequestRoamBand:
		return "roam-band"
	default:
		return "unknown"
	}
}

// Request asks the host to resolve geometry for the display nearest From.
// Generation is the topology generation the request was issued against.
type Request struct {
	Kind       RequestKind
	From       geometry.Point
	Generation int
}

type requestState int

const (
	requestIdle requestState = iota
	requestInFlight
)

// TakeRequests returns and clears the queued requests.
func (e *Engine) TakeRequests() []Request {
	out := e.outbox
	e.outbox = nil
	return out
}

// Pending reports whether a request of the given kind is in flight.
func (e *Engine) Pending(kind RequestKind) bool {
	switch kind {
	case RequestSleepTarget:
		return e.sleepReq == requestInFlight
	case RequestRoamBand:
		return e.roamReq == requestInFlight
	}
	return false
}

// Requests of a kind already in flight are dropped, not queued.
func (e *Engine) requestSleep() {
	if e.sleepReq == requestInFlight {
		return
	}
	e.sleepReq = requestInFlight
	e.enqueue(RequestSleepTarget)
}

func (e *Engine) requestRoam() {
	if e.roamReq == requestInFlight {
		return
	}
	e.roamReq = requestInFlight
	e.enqueue(RequestRoamBand)
}

func (e *Engine) enqueue(kind RequestKind) {
	e.outbox = append(e.outbox, Request{
		Kind:       kind,
		From:       e.state.Position,
		Generation: e.generation,
	})
}

// CompleteSleepTarget delivers the result of a sleep target request. Results
// that arrive after the companion left Sleep mode are discarded. On error the
// companion holds position and the request is retried on the next tick.
func (e *Engine) CompleteSleepTarget(req Request, target geometry.Point, err error) {
	e.sleepReq = requestIdle
	if err != nil || e.state.Mode != ModeSleep {
		return
	}
	e.state.Target = target
	e.sleepResolved = true
	if req.Generation != e.generation {
		e.sleepResolved = false
		e.requestSleep()
	}
}

// CompleteRoamBand delivers the result of a roam band request and picks a new
// roam target. Results that arrive after the companion left TaskbarRoam are
// discarded. A result computed against an older topology is applied and then
// refreshed.
func (e *Engine) CompleteRoamBand(req Request, band geometry.RoamBand, err error) {
	e.roamReq = requestIdle
	if err != nil || e.state.Mode != ModeTaskbarRoam {
		return
	}
	e.state.Roam = &band
	e.pickRoamTarget()
	if req.Generation != e.generation {
		e.requestRoam()
	}
}

package fishing

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCasting
	PhaseWaiting
	PhaseBiting
	PhaseHooking
	PhaseResult
	// PhaseEnded means the session is over and accepts no further input.
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCasting:
		return "casting"
	case PhaseWaiting:
		return "waiting"
	case PhaseBiting:
		return "biting"
	case PhaseHooking:
		return "hooking"
	case PhaseResult:
		return "result"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

type EventKind int

const (
	EventStart EventKind = iota + 1
	EventReleaseCast
	EventReel
	EventHook
	EventAgain
	EventExit

	// Timer events. They carry the epoch they were armed in and are dropped
	// once the session has moved on.
	EventThrowLanded
	EventBite
	EventBiteExpired
	EventTick
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventReleaseCast:
		return "release_cast"
	case EventReel:
		return "reel"
	case EventHook:
		return "hook"
	case EventAgain:
		return "again"
	case EventExit:
		return "exit"
	case EventThrowLanded:
		return "throw_landed"
	case EventBite:
		return "bite"
	case EventBiteExpired:
		return "bite_expired"
	case EventTick:
		return "tick"
	default:
		return "unknown"
	}
}

func (k EventKind) timer() bool {
	return k >= EventThrowLanded
}

type Position struct {
	X float64
	Y float64
}

type Event struct {
	Kind EventKind
	// Pos is set for EventReleaseCast.
	Pos   Position
	epoch uint64
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCaught
	OutcomeMissedBites
	OutcomeTooManyMisses
	OutcomeAbandoned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeCaught:
		return "caught"
	case OutcomeMissedBites:
		return "missed_bites"
	case OutcomeTooManyMisses:
		return "too_many_misses"
	case OutcomeAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

func (o Outcome) Success() bool {
	return o == OutcomeCaught
}

const (
	msgCast          = "Drag and release to cast!"
	msgWaiting       = "Waiting for a bite..."
	msgBite          = "🎣 BITE! Quick, tap REEL!"
	msgMissedBite    = "Missed the bite! Waiting again..."
	msgHooking       = "Match the target when it aligns!"
	msgCaught        = "Success! You caught a fish!"
	msgTooManyBites  = "Fish got away after too many missed bites"
	msgTooManyMisses = "Too many misses! Fish escaped"
	msgNoTries       = "No tries left today. Come back tomorrow!"
	msgAbandoned     = "You reeled in early. The fish swam off."
)

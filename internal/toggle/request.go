package toggle

import (
	"errors"
	"fmt"
	"strconv"
)

// Action is one of the two operations the control endpoint supports.
type Action int

const (
	Enable Action = iota
	Disable
)

func (a Action) String() string {
	switch a {
	case Enable:
		return "enable"
	case Disable:
		return "disable"
	default:
		return "action(" + strconv.Itoa(int(a)) + ")"
	}
}

// gerund is used in failure messages ("... disabling piholes").
func (a Action) gerund() string {
	switch a {
	case Enable:
		return "enabling"
	case Disable:
		return "disabling"
	default:
		return a.String()
	}
}

// Request describes one toggle. Seconds is set if and only if Action is Disable.
type Request struct {
	Action  Action
	Seconds *uint
}

var (
	errMissingSeconds    = errors.New("disable requires a duration in seconds")
	errUnexpectedSeconds = errors.New("enable does not take a duration")
)

// EnableRequest builds the request for GET /enable.
func EnableRequest() Request {
	return Request{Action: Enable}
}

// DisableRequest builds the request for GET /disable/{seconds}.
func DisableRequest(seconds uint) Request {
	return Request{Action: Disable, Seconds: &seconds}
}

// Validate checks the Seconds/Action invariant.
func (r Request) Validate() error {
	switch r.Action {
	case Enable:
		if r.Seconds != nil {
			return errUnexpectedSeconds
		}
	case Disable:
		if r.Seconds == nil {
			return errMissingSeconds
		}
	default:
		return fmt.Errorf("unknown action %d", int(r.Action))
	}
	return nil
}

// Path is the endpoint path for the request, e.g. /disable/300.
// It assumes a valid request.
func (r Request) Path() string {
	if r.Action == Disable && r.Seconds != nil {
		return "/disable/" + strconv.FormatUint(uint64(*r.Seconds), 10)
	}
	return "/enable"
}

// Result is what a toggle call reports back to its caller.
type Result struct {
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message"`
}

func succeeded(r Request) Result {
	if r.Action == Disable {
		return Result{
			Succeeded: true,
			Message:   fmt.Sprintf("Successfully disabled the pihole servers for %d seconds", *r.Seconds),
		}
	}
	return Result{Succeeded: true, Message: "Successfully enabled the pihole servers"}
}

func failed(r Request, f *TransportFailure) Result {
	return Result{
		Succeeded: false,
		Message:   fmt.Sprintf("An error occurred (%s) %s piholes: %s", f.Status, r.Action.gerund(), f.Reason),
	}
}

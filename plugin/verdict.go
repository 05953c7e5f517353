package plugin

// VerdictStatus is the outcome class of a single verification attempt.
type VerdictStatus int

const (
	// VerdictUnknown is the zero value and never the result of an
	// evaluated attempt.
	VerdictUnknown VerdictStatus = iota
	// VerdictAllow means the endpoint's response satisfied every
	// configured acceptance rule.
	VerdictAllow
	// VerdictDeny means a policy rule rejected the response, typically
	// bad credentials.
	VerdictDeny
	// VerdictError means the attempt could not be carried out and the
	// remote policy was never evaluated.
	VerdictError
	// VerdictNotApplicable means this mechanism does not apply to the
	// attempt at all; the host should fall through to the next
	// authentication mechanism in its chain.
	VerdictNotApplicable
)

// String returns the lowercase name of the status for log fields.
func (s VerdictStatus) String() string {
	switch s {
	case VerdictAllow:
		return "allow"
	case VerdictDeny:
		return "deny"
	case VerdictError:
		return "error"
	case VerdictNotApplicable:
		return "not_applicable"
	default:
		return "unknown"
	}
}

// Reasons attached to non-allow verdicts. They are host- and log-facing
// detail; none of them is ever echoed to the remote client.
const (
	ReasonConfigIncomplete   = "verification config incomplete"
	ReasonUserNotMatched     = "username does not match pattern"
	ReasonInvalidUserPattern = "username pattern does not compile"
	ReasonFailureString      = "failure string found in response"
	ReasonNotAuthorized      = "user is not authorized to log in"
	ReasonTransportFailure   = "verification endpoint unreachable"
)

// Verdict is the terminal result of one verification attempt. Exactly one
// verdict is produced per attempt.
type Verdict struct {
	Status VerdictStatus
	// Reason records which rule or failure produced a non-allow status.
	Reason string
	// Identity carries the resolved local account on allow, when a local
	// user mapping is configured. Nil otherwise.
	Identity *LocalIdentity
	// AttemptID correlates the verdict with the attempt's log lines. Empty
	// for verdicts reached before an attempt was dispatched.
	AttemptID string
}

// Allowed reports whether the attempt authenticated successfully.
func (v Verdict) Allowed() bool {
	return v.Status == VerdictAllow
}

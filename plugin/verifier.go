package plugin

import (
	"context"

	"github.com/hashicorp/go-hclog"
)

// Verifier is the credential-verification engine. It POSTs a username and
// password to the configured endpoint and turns the response into a
// verdict under the configured acceptance rules.
//
// A Verifier is safe for concurrent use: the config is read-only, the HTTP
// client is shared, and each attempt gets its own collector.
type Verifier struct {
	config     *Config
	invoker    *HTTPInvoker
	policy     *PolicyEvaluator
	authorizer *Authorizer
	identity   *IdentityResolver
	logger     hclog.Logger

	// patternErr is set when the configured username pattern does not
	// compile; every attempt then declines.
	patternErr error
}

// NewVerifier wires the engine for one verification context. A username
// pattern the config carries uncompiled, as on a Config assembled from
// fields rather than loaded, is compiled here; the config must not be
// mutated after this call. authorizer may be nil.
func NewVerifier(cfg *Config, authorizer *Authorizer, logger hclog.Logger) *Verifier {
	v := &Verifier{
		config:     cfg,
		invoker:    NewHTTPInvoker(cfg, logger),
		policy:     NewPolicyEvaluator(logger),
		authorizer: authorizer,
		logger:     logger,
	}
	if err := cfg.ensureUserPattern(); err != nil {
		logger.Error("user pattern does not compile, declining all attempts",
			"pattern", cfg.UserPattern, "error", err)
		v.patternErr = err
	}
	if cfg.LocalUser != "" {
		v.identity = NewIdentityResolver(cfg.LocalUser)
	}
	return v
}

// Verify runs one verification attempt and returns exactly one verdict.
//
// The attempt declines (not-applicable) before any network traffic when
// the config is incomplete or the username misses the configured pattern.
// A pattern that does not compile declines every attempt. Otherwise a
// single POST is made, never retried, and the response is judged: failure
// string first, then required headers. A transport failure is an error
// verdict, never a denial.
func (v *Verifier) Verify(ctx context.Context, username string, password Secret) Verdict {
	if err := v.config.Validate(); err != nil {
		v.logger.Debug("verification config incomplete, declining", "error", err)
		VerifyDeclined.Inc()
		return Verdict{Status: VerdictNotApplicable, Reason: ReasonConfigIncomplete}
	}

	if v.patternErr != nil {
		v.logger.Debug("user pattern is invalid, declining", "error", v.patternErr)
		VerifyDeclined.Inc()
		return Verdict{Status: VerdictNotApplicable, Reason: ReasonInvalidUserPattern}
	}

	if re := v.config.userRegexp; re != nil && !re.MatchString(username) {
		v.logger.Debug("user does not match pattern, declining",
			"user", username, "pattern", v.config.UserPattern)
		VerifyDeclined.Inc()
		return Verdict{Status: VerdictNotApplicable, Reason: ReasonUserNotMatched}
	}

	req := BuildVerificationRequest(v.config, username, password)
	attempt := NewAttempt()
	collector := NewResponseCollector(attempt)

	v.logger.Debug("calling verification endpoint",
		"attempt", attempt.ID, "url", req.URL, "body", req.RedactedBody)

	if err := attempt.Dispatch(); err != nil {
		return v.errorVerdict(attempt, "attempt state error", err)
	}
	if err := v.invoker.Do(ctx, req, collector); err != nil {
		_ = attempt.Fail()
		return v.errorVerdict(attempt, ReasonTransportFailure, err)
	}
	if err := attempt.Complete(); err != nil {
		return v.errorVerdict(attempt, "attempt state error", err)
	}

	v.logger.Debug("verification endpoint call succeeded",
		"attempt", attempt.ID, "headers", len(collector.Headers()), "body_bytes", len(collector.Body()))

	verdict := v.policy.Evaluate(v.config, collector)
	verdict.AttemptID = attempt.ID
	if verdict.Status == VerdictDeny {
		v.logger.Debug("verification denied",
			"attempt", attempt.ID, "user", username, "reason", verdict.Reason)
		VerifyDenied.Inc()
		return verdict
	}

	allowed, err := v.authorizer.Authorize(username)
	if err != nil {
		return v.errorVerdict(attempt, "authorization error", err)
	}
	if !allowed {
		AuthzDenials.Inc()
		return Verdict{Status: VerdictDeny, Reason: ReasonNotAuthorized, AttemptID: attempt.ID}
	}

	if v.identity != nil {
		ident, err := v.identity.Resolve(username)
		if err != nil {
			return v.errorVerdict(attempt, "local identity unavailable", err)
		}
		verdict.Identity = ident
	}

	v.logger.Debug("verification allowed", "attempt", attempt.ID, "user", username)
	VerifyAllowed.Inc()
	return verdict
}

func (v *Verifier) errorVerdict(attempt *Attempt, reason string, err error) Verdict {
	v.logger.Error("verification attempt failed",
		"attempt", attempt.ID, "reason", reason, "error", err)
	VerifyErrored.Inc()
	return Verdict{Status: VerdictError, Reason: reason, AttemptID: attempt.ID}
}

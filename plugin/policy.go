package plugin

import (
	"bytes"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// PolicyEvaluator turns a completed response into an allow or deny verdict
// under the configured acceptance rules.
type PolicyEvaluator struct {
	logger hclog.Logger
}

// NewPolicyEvaluator returns an evaluator logging rule checks to logger.
func NewPolicyEvaluator(logger hclog.Logger) *PolicyEvaluator {
	return &PolicyEvaluator{logger: logger}
}

// Evaluate applies the rules in fixed order: the failure-string check runs
// first, then the required-header lines in configuration order. The first
// rule to reject wins and later rules are not consulted; if no rule
// rejects, the attempt is allowed. Header comparison is an exact match
// against whole received lines, case included.
func (p *PolicyEvaluator) Evaluate(cfg *Config, collector *ResponseCollector) Verdict {
	if cfg.FailedString != "" && bytes.Contains(collector.Body(), []byte(cfg.FailedString)) {
		p.logger.Debug("found failure string in response body", "failed_string", cfg.FailedString)
		return Verdict{Status: VerdictDeny, Reason: ReasonFailureString}
	}

	for _, required := range cfg.RequiredHeaders {
		p.logger.Debug("checking for required header", "line", required)
		if !containsLine(collector.Headers(), required) {
			p.logger.Debug("required header not found in response", "line", required)
			return Verdict{
				Status: VerdictDeny,
				Reason: fmt.Sprintf("required header missing: %s", required),
			}
		}
	}

	return Verdict{Status: VerdictAllow}
}

func containsLine(lines []string, want string) bool {
	for _, line := range lines {
		if line == want {
			return true
		}
	}
	return false
}

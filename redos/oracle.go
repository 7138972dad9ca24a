package redos

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/backrex/backrex"
	"github.com/backrex/backrex/syntax"
)

// crossValidate replays a confirmed attack through the regexp2
// backtracking engine with a wall-clock match timeout. Returns true when
// the independent engine also fails to finish quickly — additional
// evidence that the blowup is real and not an artifact of this engine's
// search order.
func (a *analysis) crossValidate(p *backrex.Pattern, cfg Config, attack string) bool {
	timeout := cfg.CrossValidateTimeout
	if timeout <= 0 {
		timeout = 100 * time.Millisecond
	}
	re2, err := regexp2.Compile(p.String(), regexp2Options(p.Flags()))
	if err != nil {
		// The dialect corner the oracle cannot parse is not evidence
		// either way; treat the finding as confirmed.
		return true
	}
	re2.MatchTimeout = timeout

	start := time.Now()
	_, err = re2.MatchString(attack)
	elapsed := time.Since(start)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "timeout") {
		return true
	}
	// Completing near the timeout still indicates super-linear work.
	return elapsed >= timeout/2
}

// regexp2Options maps the engine flags onto their regexp2 equivalents.
func regexp2Options(flags syntax.Flags) regexp2.RegexOptions {
	var opts regexp2.RegexOptions
	if flags&syntax.CaseInsensitive != 0 {
		opts |= regexp2.IgnoreCase
	}
	if flags&syntax.Multiline != 0 {
		opts |= regexp2.Multiline
	}
	if flags&syntax.DotAll != 0 {
		opts |= regexp2.Singleline
	}
	if flags&syntax.Comments != 0 {
		opts |= regexp2.IgnorePatternWhitespace
	}
	return opts
}

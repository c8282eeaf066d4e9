package device

import (
	"fmt"

	"github.com/sarchlab/sdramctl/sim/hooking"
)

// HookPosViolation is triggered when the device sees a command that breaks
// the datasheet rules. The item is a Violation.
var HookPosViolation = &hooking.HookPos{Name: "SDRAMViolation"}

// Rule names a datasheet rule.
type Rule string

// Rules that the device checks.
const (
	RulePowerOn        Rule = "power-on wait"
	RuleInitSequence   Rule = "initialization sequence"
	RuleBankState      Rule = "bank state"
	RuleTRCD           Rule = "tRCD"
	RuleTRP            Rule = "tRP"
	RuleTRAS           Rule = "tRAS"
	RuleTRC            Rule = "tRC"
	RuleTRFC           Rule = "tRFC"
	RuleTWR            Rule = "tWR"
	RuleTMRD           Rule = "tMRD"
	RuleTRRD           Rule = "tRRD"
	RuleRefreshPeriod  Rule = "refresh interval"
	RuleModeRegister   Rule = "mode register"
	RuleBusContention  Rule = "bus contention"
	RuleAddressRange   Rule = "address range"
	RuleUnsupportedCmd Rule = "unsupported command"
)

// A Violation is a broken datasheet rule.
type Violation struct {
	Cycle   uint64
	Time    float64
	Command string
	Rule    Rule
	Detail  string
}

func (v Violation) Error() string {
	return fmt.Sprintf("cycle %d (%.3f us), %s: %s violated, %s",
		v.Cycle, v.Time*1e6, v.Command, v.Rule, v.Detail)
}

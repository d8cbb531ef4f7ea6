package session

import "github.com/chanddari/subbot/internal/domain/model"

// Step is the input the conversation currently expects.
type Step int

const (
	StepNone Step = iota
	StepName
	StepCompany
	StepPhone
	StepProvince
	StepEmail
	StepPlan
	StepReceipt
)

// stepOrder is the fixed dialogue progression used for back-navigation.
var stepOrder = []Step{StepName, StepCompany, StepPhone, StepProvince, StepEmail, StepPlan, StepReceipt}

// Prev returns the previous step in the dialogue. The first step has no
// underflow and idle sessions stay idle.
func (s Step) Prev() Step {
	for i, step := range stepOrder {
		if step != s {
			continue
		}
		if i == 0 {
			return s
		}
		return stepOrder[i-1]
	}
	return StepNone
}

func (s Step) String() string {
	switch s {
	case StepName:
		return "NAME"
	case StepCompany:
		return "COMPANY"
	case StepPhone:
		return "PHONE"
	case StepProvince:
		return "PROVINCE"
	case StepEmail:
		return "EMAIL"
	case StepPlan:
		return "PLAN"
	case StepReceipt:
		return "RECEIPT"
	default:
		return "NONE"
	}
}

// Flow distinguishes first-time signup from renewal.
type Flow int

const (
	FlowNew Flow = iota
	FlowRenew
)

// Category maps the flow onto its plan catalog.
func (f Flow) Category() model.PlanCategory {
	if f == FlowRenew {
		return model.PlanCategoryRenew
	}
	return model.PlanCategoryNew
}

// Session is the per-chat conversation state. It is ephemeral; losing it on
// restart only drops a not-yet-submitted form.
type Session struct {
	Step           Step
	Flow           Flow
	Form           model.Form
	PendingOrderID string
}

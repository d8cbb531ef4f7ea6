package session

import (
	"testing"

	"github.com/chanddari/subbot/internal/domain/model"
)

func TestStepPrevWalksBackwards(t *testing.T) {
	cases := []struct {
		step Step
		want Step
	}{
		{StepReceipt, StepPlan},
		{StepPlan, StepEmail},
		{StepEmail, StepProvince},
		{StepProvince, StepPhone},
		{StepPhone, StepCompany},
		{StepCompany, StepName},
		{StepName, StepName},
		{StepNone, StepNone},
	}
	for _, tc := range cases {
		if got := tc.step.Prev(); got != tc.want {
			t.Errorf("%s.Prev() = %s, want %s", tc.step, got, tc.want)
		}
	}
}

func TestFlowCategory(t *testing.T) {
	if FlowNew.Category() != model.PlanCategoryNew {
		t.Errorf("FlowNew maps to %s", FlowNew.Category())
	}
	if FlowRenew.Category() != model.PlanCategoryRenew {
		t.Errorf("FlowRenew maps to %s", FlowRenew.Category())
	}
}

package verification

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the scenario context the verification steps
// need.
type TestContext interface {
	POST(path string, body any) error
	SavedRunID() string
	SavedRoot() string
}

// RegisterSteps registers verification step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &verificationSteps{tc: tc}

	ctx.Step(`^I verify the saved run against its root$`, steps.verifySavedRun)
	ctx.Step(`^I verify the saved run against root "([^"]*)"$`, steps.verifyAgainstRoot)
	ctx.Step(`^I verify an unknown run$`, steps.verifyUnknownRun)
}

type verificationSteps struct {
	tc TestContext
}

func (s *verificationSteps) verifySavedRun() error {
	if s.tc.SavedRunID() == "" {
		return fmt.Errorf("no run saved")
	}
	return s.tc.POST("/verify/notarization", map[string]any{
		"run_id":        s.tc.SavedRunID(),
		"expected_root": s.tc.SavedRoot(),
	})
}

func (s *verificationSteps) verifyAgainstRoot(root string) error {
	if s.tc.SavedRunID() == "" {
		return fmt.Errorf("no run saved")
	}
	return s.tc.POST("/verify/notarization", map[string]any{
		"run_id":        s.tc.SavedRunID(),
		"expected_root": root,
	})
}

func (s *verificationSteps) verifyUnknownRun() error {
	unknown := "00000000000000000000000000000000000000000000000000000000000000ff"
	return s.tc.POST("/verify/notarization", map[string]any{
		"run_id": unknown,
	})
}

package notary

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the scenario context the notary steps need.
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	GetResponseField(field string) (any, error)
	SaveRun(runID, root string)
	SavedRunID() string
}

// RegisterSteps registers notarization step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &notarySteps{tc: tc}

	ctx.Step(`^I notarize a run named "([^"]*)" with document "([^"]*)"$`, steps.notarizeRun)
	ctx.Step(`^I save the notarized run$`, steps.saveNotarizedRun)
	ctx.Step(`^I notarize the same run again$`, steps.notarizeSameRunAgain)
	ctx.Step(`^I request the status of the saved run$`, steps.requestStatus)
}

type notarySteps struct {
	tc      TestContext
	lastRun string
	lastDoc string
}

func (s *notarySteps) notarizeRun(runName, document string) error {
	s.lastRun = runName
	s.lastDoc = document
	return s.tc.POST("/ledger/notarize", map[string]any{
		"run_name": runName,
		"documents": []map[string]any{
			{"title": document, "content": "scenario content for " + document},
		},
		"evidence_texts": []string{"evidence for " + runName},
		"audit_payload":  map[string]any{"scenario": runName},
	})
}

func (s *notarySteps) saveNotarizedRun() error {
	runID, err := s.tc.GetResponseField("run_id")
	if err != nil {
		return err
	}
	root, err := s.tc.GetResponseField("root")
	if err != nil {
		return err
	}
	s.tc.SaveRun(fmt.Sprintf("%v", runID), fmt.Sprintf("%v", root))
	return nil
}

func (s *notarySteps) notarizeSameRunAgain() error {
	if s.lastRun == "" {
		return fmt.Errorf("no run notarized yet")
	}
	return s.notarizeRun(s.lastRun, s.lastDoc)
}

func (s *notarySteps) requestStatus() error {
	if s.tc.SavedRunID() == "" {
		return fmt.Errorf("no run saved")
	}
	return s.tc.GET("/ledger/runs/" + s.tc.SavedRunID() + "/status")
}

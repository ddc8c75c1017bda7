package common

import (
	"fmt"
	"os"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the scenario context the common steps need.
type TestContext interface {
	SetToken(token string)
	GET(path string) error
	LastStatus() int
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers generic request and assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I am authenticated$`, steps.authenticate)
	ctx.Step(`^I am not authenticated$`, steps.notAuthenticated)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^the response status should be (\d+)$`, steps.assertStatus)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.assertField)
	ctx.Step(`^the response field "([^"]*)" should be (true|false)$`, steps.assertBoolField)
}

type commonSteps struct {
	tc TestContext
}

// authenticate uses the token provisioned for the environment under test.
func (s *commonSteps) authenticate() error {
	token := os.Getenv("LEXSEAL_E2E_TOKEN")
	if token == "" {
		return fmt.Errorf("LEXSEAL_E2E_TOKEN not set")
	}
	s.tc.SetToken(token)
	return nil
}

func (s *commonSteps) notAuthenticated() error {
	s.tc.SetToken("")
	return nil
}

func (s *commonSteps) get(path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) assertStatus(expected int) error {
	if s.tc.LastStatus() != expected {
		return fmt.Errorf("expected status %d, got %d", expected, s.tc.LastStatus())
	}
	return nil
}

func (s *commonSteps) assertField(field, expected string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprintf("%v", value) != expected {
		return fmt.Errorf("expected %s=%q, got %v", field, expected, value)
	}
	return nil
}

func (s *commonSteps) assertBoolField(field, expected string) error {
	return s.assertField(field, expected)
}

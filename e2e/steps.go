package e2e

import (
	"github.com/cucumber/godog"

	"lexseal/e2e/steps/common"
	"lexseal/e2e/steps/notary"
	"lexseal/e2e/steps/verification"
)

// RegisterSteps registers all step definitions from the modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	notary.RegisterSteps(ctx, tc)
	verification.RegisterSteps(ctx, tc)
}

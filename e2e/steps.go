package e2e

import (
	"github.com/cucumber/godog"

	"lotto/e2e/steps/common"
	"lotto/e2e/steps/lottery"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (health, generic assertions)
	common.RegisterSteps(ctx, tc)

	// Register lottery lifecycle steps
	lottery.RegisterSteps(ctx, tc)
}

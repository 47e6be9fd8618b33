package lottery

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path, subject string, body interface{}) error
	GET(path, subject string) error
	GetLastStatusCode() int
}

// RegisterSteps registers lottery lifecycle step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &lotterySteps{tc: tc}

	// Admin lifecycle
	ctx.Step(`^the lottery is initialized by "([^"]*)" with currency "([^"]*)"$`, steps.ensureInitialized)
	ctx.Step(`^"([^"]*)" starts the sale$`, steps.startSale)
	ctx.Step(`^"([^"]*)" deposits the pool$`, steps.deposit)
	ctx.Step(`^"([^"]*)" withdraws the pool$`, steps.withdraw)
	ctx.Step(`^"([^"]*)" draws the winner with seed "([^"]*)"$`, steps.draw)

	// Participant actions
	ctx.Step(`^"([^"]*)" buys a "([^"]*)" ticket$`, steps.buyTicket)
	ctx.Step(`^"([^"]*)" claims their principal$`, steps.claim)
	ctx.Step(`^"([^"]*)" looks up their ticket$`, steps.myTicket)

	// Views
	ctx.Step(`^I request the lottery status$`, steps.status)
}

type lotterySteps struct {
	tc TestContext
}

// ensureInitialized tolerates a server initialized by an earlier scenario.
func (s *lotterySteps) ensureInitialized(ctx context.Context, admin, currency string) error {
	if err := s.tc.POST("/admin/initialize", admin, map[string]string{"currency": currency}); err != nil {
		return err
	}
	switch code := s.tc.GetLastStatusCode(); code {
	case http.StatusCreated, http.StatusConflict:
		return nil
	default:
		return fmt.Errorf("initialize returned status %d", code)
	}
}

func (s *lotterySteps) startSale(ctx context.Context, caller string) error {
	return s.tc.POST("/admin/sale", caller, nil)
}

func (s *lotterySteps) deposit(ctx context.Context, caller string) error {
	return s.tc.POST("/admin/venue/deposit", caller, nil)
}

func (s *lotterySteps) withdraw(ctx context.Context, caller string) error {
	return s.tc.POST("/admin/venue/withdraw", caller, nil)
}

func (s *lotterySteps) draw(ctx context.Context, caller, seed string) error {
	return s.tc.POST("/admin/raffle", caller, map[string]string{"seed": seed})
}

func (s *lotterySteps) buyTicket(ctx context.Context, participant, size string) error {
	return s.tc.POST("/tickets", participant, map[string]string{"size": size})
}

func (s *lotterySteps) claim(ctx context.Context, participant string) error {
	return s.tc.POST("/tickets/claim", participant, nil)
}

func (s *lotterySteps) myTicket(ctx context.Context, participant string) error {
	return s.tc.GET("/tickets/me", participant)
}

func (s *lotterySteps) status(ctx context.Context) error {
	return s.tc.GET("/status", "")
}

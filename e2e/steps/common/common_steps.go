package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path, subject string) error
	GetLastStatusCode() int
	GetResponseField(field string) (interface{}, error)
}

// RegisterSteps registers health and assertion steps shared by all features
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the lotto service is running$`, steps.serviceIsRunning)
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be (-?\d+)$`, steps.numericFieldShouldBe)
	ctx.Step(`^the error should be "([^"]*)"$`, steps.errorShouldBe)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/healthz", ""); err != nil {
		return err
	}
	return s.statusShouldBe(ctx, 200)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, expected int) error {
	if got := s.tc.GetLastStatusCode(); got != expected {
		return fmt.Errorf("expected status %d, got %d", expected, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBe(ctx context.Context, field, expected string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(value) != expected {
		return fmt.Errorf("expected %s to be %q, got %v", field, expected, value)
	}
	return nil
}

func (s *commonSteps) numericFieldShouldBe(ctx context.Context, field string, expected int64) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	number, ok := value.(float64)
	if !ok || int64(number) != expected {
		return fmt.Errorf("expected %s to be %d, got %v", field, expected, value)
	}
	return nil
}

func (s *commonSteps) errorShouldBe(ctx context.Context, code string) error {
	return s.fieldShouldBe(ctx, "error", code)
}

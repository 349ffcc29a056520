package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MockCharger is an in-process payment rail that always succeeds. Used when
// no stripe key is configured and in tests.
type MockCharger struct{}

// NewMockCharger creates a new mock charger.
func NewMockCharger() *MockCharger {
	return &MockCharger{}
}

// Charge returns a synthetic payment id.
func (MockCharger) Charge(ctx context.Context, userID string, amount int64, currency string) (string, error) {
	return fmt.Sprintf("mock_%s", uuid.New().String()), nil
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event subjects published by the forecast service.
const (
	SubjectModelFitted       = "panelcast.model.fitted"
	SubjectForecastCompleted = "panelcast.forecast.completed"
)

// ModelFittedEvent announces a persisted model artifact.
type ModelFittedEvent struct {
	ModelID  string    `json:"model_id"`
	Strategy string    `json:"strategy"`
	Horizon  int       `json:"horizon"`
	Entities int       `json:"entities"`
	FittedAt time.Time `json:"fitted_at"`
}

// ForecastCompletedEvent announces a finished forecast.
type ForecastCompletedEvent struct {
	ModelID     string    `json:"model_id,omitempty"`
	Entities    int       `json:"entities"`
	Horizon     int       `json:"horizon"`
	CompletedAt time.Time `json:"completed_at"`
}

// PublishEvent JSON-encodes an event and publishes it.
func PublishEvent(ctx context.Context, pub Publisher, subject string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", subject, err)
	}
	return pub.Publish(ctx, subject, data)
}

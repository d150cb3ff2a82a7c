package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStageEnter    EventType = "stage_enter"
	EventStageComplete EventType = "stage_complete"
	EventQuery         EventType = "query"
)

// StageEvent represents entry into or completion of a workflow stage.
type StageEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Stage     Stage     `json:"stage"`
	// NextStage is set on completion events.
	NextStage Stage `json:"next_stage,omitempty"`
	// Ref is the run id produced by the completed stage.
	Ref string `json:"ref,omitempty"`
}

// QueryEvent represents one call to the external SQL service.
type QueryEvent struct {
	Timestamp   time.Time     `json:"timestamp"`
	Type        EventType     `json:"type"`
	SessionID   string        `json:"session_id"`
	Stage       Stage         `json:"stage"`
	Instruction string        `json:"instruction,omitempty"`
	Duration    time.Duration `json:"duration"`
	IsError     bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for orchestrator observability.
type LifecycleHooks struct {
	OnStageEnter    func(context.Context, *StageEvent)
	OnStageComplete func(context.Context, *StageEvent)
	OnQuery         func(context.Context, *QueryEvent)
}

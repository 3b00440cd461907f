package widget

import (
	"globewidget/internal/core"
	"globewidget/internal/transport"
)

// Aliases exposing channel types to widget callers.
type (
	// Message is one protocol message in either direction.
	Message = core.Message
	// Sender delivers outbound messages to the renderer.
	Sender = core.Sender
	// SenderFunc adapts a function to Sender.
	SenderFunc = core.SenderFunc
	// State is the channel lifecycle phase.
	State = core.State
	// Event is a decoded renderer interaction.
	Event = core.Event
	// Coordinates is a resolved globe position.
	Coordinates = core.Coordinates
	// Registration detaches one event handler.
	Registration = core.Registration
	// SnapshotStore persists widget configurations.
	SnapshotStore = core.SnapshotStore
	// AuditRecorder, MetricsRecorder and Tracer observe channel operations.
	AuditRecorder   = core.AuditRecorder
	MetricsRecorder = core.MetricsRecorder
	Tracer          = core.Tracer
	// Recorder is an in-memory Sender for tests and previews.
	Recorder = transport.Recorder
)

// Lifecycle states.
const (
	StateUninitialized = core.StateUninitialized
	StateInitializing  = core.StateInitializing
	StateReady         = core.StateReady
	StateDisposed      = core.StateDisposed
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = core.ErrClosed

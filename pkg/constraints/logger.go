package constraints

import (
	"log/slog"

	"cellpotts/pkg/cpm"
)

// EventLogger is a listener that writes every mutation and completed Monte
// Carlo step to a logger at debug level.
type EventLogger struct {
	Log *slog.Logger

	m *cpm.Model
}

// Type reports EventLogger as a listener.
func (e *EventLogger) Type() cpm.ConstraintType { return cpm.Listener }

// Attach falls back to the default logger when Log is nil.
func (e *EventLogger) Attach(m *cpm.Model) error {
	if e.Log == nil {
		e.Log = slog.Default()
	}
	e.m = m
	return nil
}

// OnMutation logs each accepted copy at debug level.
func (e *EventLogger) OnMutation(i cpm.Index, oldID, newID cpm.CellID) {
	e.Log.Debug("pixel copied", "point", e.m.IndexToPoint(i), "from", int(oldID), "to", int(newID))
}

// OnStepComplete logs a summary line per Monte Carlo step.
func (e *EventLogger) OnStepComplete() {
	e.Log.Debug("monte carlo step", "time", e.m.Time(), "cells", e.m.NumCells(), "border", e.m.BorderSize())
}

package statemachine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName    = "statemachine"
	fireSpanName  = "statemachine.fire"
	attrMachine   = "machine"
	attrMachineID = "machine_id"
	attrName      = "transition"
	attrFrom      = "from"
	attrTo        = "to"
)

// startFireSpan creates the span wrapping a single Fire call.
// Uses the global tracer provider, which is a no-op unless telemetry is initialized.
// The caller is responsible for calling endFireSpan.
//
//nolint:spancheck // Span lifecycle managed by caller
func startFireSpan(ctx context.Context, machine, machineID, transition string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, fireSpanName)
	span.SetAttributes(
		attribute.String(attrMachine, machine),
		attribute.String(attrMachineID, machineID),
		attribute.String(attrName, transition),
	)

	return ctx, span
}

// annotateFireSpan records the edge a successful Fire took.
func annotateFireSpan(span trace.Span, from, to string) {
	span.SetAttributes(
		attribute.String(attrFrom, from),
		attribute.String(attrTo, to),
	)
}

// endFireSpan sets the span status from the Fire outcome and ends it.
func endFireSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "committed")
	}

	span.End()
}

// Package telemetry configures OpenTelemetry context propagation and tracing
// for batch jobs.
package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/JakeFAU/contact-finder"

// InstallPropagator sets the global text map propagator so completion
// events carry W3C trace context and baggage.
func InstallPropagator() {
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}),
	)
}

// Tracer returns the tracer used for job spans. Without an installed
// provider the spans are no-ops.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Package observability provides OpenTelemetry tracing and metrics
// integration for the event distribution engine.
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
//	metrics, _ := observability.NewMetrics(observability.Meter("my-service"))
//	bus := bus.New(bus.WithMetrics(metrics))
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
// All Metrics methods are nil-receiver safe, so instrumented components can
// be constructed without metrics and record nothing.
package observability

// Package metrics provides build metrics for tutorialbuilder.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing unless the preview server wires a
// PrometheusRecorder:
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	builder := build.New(cfg, renderer).WithRecorder(recorder)
package metrics

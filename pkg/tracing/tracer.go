// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tracing wraps span creation for the verification pipeline. The
// default build uses a no-op tracer. Built with the "otel" tag, spans are
// exported over OTLP/HTTP as configured by the standard OTEL_* variables.
package tracing

import "context"

// Span is one traced operation.
type Span interface {
	SetAttribute(key string, value interface{})
	// RecordError marks the span as failed. A nil error is ignored.
	RecordError(err error)
	End()
}

// Tracer starts spans. The returned context carries the span to callees.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

// NoopSpan discards everything.
type NoopSpan struct{}

func (NoopSpan) SetAttribute(string, interface{}) {}
func (NoopSpan) RecordError(error)                {}
func (NoopSpan) End()                             {}

// NoopTracer hands out NoopSpans and leaves the context untouched.
type NoopTracer struct{}

func (NoopTracer) Start(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, NoopSpan{}
}

var globalTracer Tracer = NoopTracer{}

// SetTracer installs t for Start and Run. nil restores the no-op tracer.
func SetTracer(t Tracer) {
	if t == nil {
		t = NoopTracer{}
	}
	globalTracer = t
}

// Start starts a span on the installed tracer.
func Start(ctx context.Context, name string) (context.Context, Span) {
	return globalTracer.Start(ctx, name)
}

// Enabled reports whether a tracer other than the no-op one is installed.
func Enabled() bool {
	_, noop := globalTracer.(NoopTracer)
	return !noop
}

// Run executes fn inside a span named name carrying attrs, and records the
// error fn returns on the span. Without a real tracer fn is called directly.
func Run(ctx context.Context, name string, attrs map[string]interface{}, fn func(context.Context) error) error {
	if !Enabled() {
		return fn(ctx)
	}
	ctx, span := globalTracer.Start(ctx, name)
	defer span.End()
	for k, v := range attrs {
		span.SetAttribute(k, v)
	}
	err := fn(ctx)
	span.RecordError(err)
	return err
}

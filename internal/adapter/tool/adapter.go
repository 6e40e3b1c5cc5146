// Package tool adapts the Quercle API endpoints to the agent tool-calling
// contract: declarative parameter schemas, a synchronous and an asynchronous
// execution path, and a uniform error-to-text policy for remote failures.
package tool

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"quercle-tools/internal/domain"
	"quercle-tools/internal/infra/tracer"
)

// Caller abstracts the Quercle client for the adapters (and their tests).
// *quercle.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, path string, body any) (string, error)
}

// Adapter binds one Quercle endpoint to the domain.Tool contract. All five
// tools are instances of this one type, parameterized by EndpointSpec.
//
// An Adapter holds no mutable state after construction, so concurrent
// Execute/ExecuteAsync calls on the same instance are independent.
type Adapter struct {
	spec   EndpointSpec
	schema json.RawMessage
	caller Caller
	logger *slog.Logger
}

// NewAdapter creates the adapter for a single endpoint spec.
func NewAdapter(spec EndpointSpec, caller Caller, logger *slog.Logger) *Adapter {
	return &Adapter{
		spec:   spec,
		schema: spec.schemaJSON(),
		caller: caller,
		logger: logger,
	}
}

// NewAdapters creates one adapter per row of the endpoint table.
func NewAdapters(caller Caller, logger *slog.Logger) []*Adapter {
	specs := Specs()
	adapters := make([]*Adapter, 0, len(specs))
	for _, s := range specs {
		adapters = append(adapters, NewAdapter(s, caller, logger))
	}
	return adapters
}

func (a *Adapter) Name() string        { return a.spec.Name }
func (a *Adapter) Description() string { return a.spec.Description }

func (a *Adapter) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        a.spec.Name,
		Description: a.spec.Description,
		Parameters:  a.schema,
	}
}

// Execute runs the tool synchronously: validate arguments, build the request
// body, issue one POST, and map the outcome.
//
// A ValidationError is returned as a Go error: the invocation never reached
// the network and the caller must fix its arguments. Every remote failure is
// folded into the ToolResult as a single line of text prefixed with the tool
// name, so an agent loop can hand it to the model instead of crashing.
func (a *Adapter) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	ctx, span := tracer.StartSpan(ctx, "tool."+a.spec.Name,
		trace.WithAttributes(tracer.StringAttr("tool.name", a.spec.Name)),
	)
	defer span.End()

	callID := ulid.Make().String()
	span.SetAttributes(tracer.StringAttr("tool.invocation", callID))

	args, verr := a.spec.decodeArgs(params)
	if verr != nil {
		tracer.RecordError(span, verr)
		return nil, verr
	}

	result, err := a.caller.Call(ctx, a.spec.Path, buildBody(a.spec, args))
	if err != nil {
		tracer.RecordError(span, err)
		a.logger.Warn("tool call failed",
			"tool", a.spec.Name, "invocation", callID, "error", err)
		return &domain.ToolResult{
			ToolCallID: callID,
			IsError:    true,
			Content:    failureLine(a.spec.Name, err),
		}, nil
	}

	tracer.SetOK(span)
	a.logger.Debug("tool call completed",
		"tool", a.spec.Name, "invocation", callID, "size", len(result))

	// The result text is opaque: no post-processing, no truncation.
	return &domain.ToolResult{ToolCallID: callID, Content: result}, nil
}

// ExecuteAsync runs the identical pipeline without blocking the caller. The
// buffered channel delivers exactly one AsyncResult and is then closed; for
// the same input and the same remote response it carries exactly what Execute
// would have returned.
func (a *Adapter) ExecuteAsync(ctx context.Context, params json.RawMessage) <-chan domain.AsyncResult {
	ch := make(chan domain.AsyncResult, 1)
	go func() {
		defer close(ch)
		result, err := a.Execute(ctx, params)
		ch <- domain.AsyncResult{Result: result, Err: err}
	}()
	return ch
}

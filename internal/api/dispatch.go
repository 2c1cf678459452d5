package api

import (
	"context"

	"scoring-api/internal/common/apierrors"
	"scoring-api/internal/common/logger"
	"scoring-api/internal/common/validation"
)

// DiagContext is the mutable per-request record handlers populate for
// observability. It is never shared across requests.
type DiagContext map[string]interface{}

// Request is what a method handler receives: the authenticated outer
// envelope, the bound inner arguments, and the diagnostic context.
type Request struct {
	Envelope *Envelope
	Args     *validation.BoundRequest
	Diag     DiagContext
}

// MethodHandler executes one API method over validated arguments.
type MethodHandler interface {
	Execute(ctx context.Context, req *Request) (map[string]interface{}, error)
}

type method struct {
	schema  *validation.Schema
	handler MethodHandler
}

// Dispatcher turns a raw envelope into a handler invocation and a status
// code: bind, authenticate, route, bind arguments, execute.
type Dispatcher struct {
	auth    *Authenticator
	methods map[string]method
	log     logger.Logger
}

func NewDispatcher(auth *Authenticator, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		auth:    auth,
		methods: make(map[string]method),
		log:     log.WithFields(map[string]interface{}{"component": "dispatcher"}),
	}
}

// Register adds a method to the dispatch table.
func (d *Dispatcher) Register(name string, schema *validation.Schema, handler MethodHandler) {
	d.methods[name] = method{schema: schema, handler: handler}
}

// Dispatch processes one request body. The payload is the method response
// on success, the per-field error map on validation failure, or an opaque
// message otherwise; nothing internal leaks to the client.
func (d *Dispatcher) Dispatch(ctx context.Context, body map[string]interface{}, diag DiagContext) (interface{}, int) {
	env, bound := BindEnvelope(body, d.auth.AdminLogin())
	if env == nil {
		return bound.Errors(), apierrors.StatusInvalidRequest
	}

	if !d.auth.Check(env) {
		d.log.WithError(apierrors.NewAuthFailedError()).Warn("authentication failed", map[string]interface{}{
			"login": env.Login,
		})
		return apierrors.StatusText(apierrors.StatusForbidden), apierrors.StatusForbidden
	}

	m, ok := d.methods[env.Method]
	if !ok {
		d.log.WithError(apierrors.NewUnknownMethodError(env.Method)).Warn("unknown method requested", nil)
		return map[string]string{"method": "unknown method"}, apierrors.StatusInvalidRequest
	}

	args := m.schema.Bind(env.Arguments)
	if !args.Valid() {
		return args.Errors(), apierrors.StatusInvalidRequest
	}

	payload, err := m.handler.Execute(ctx, &Request{Envelope: env, Args: args, Diag: diag})
	if err != nil {
		d.log.WithError(err).Error("handler failed", map[string]interface{}{
			"method": env.Method,
		})
		return nil, apierrors.StatusInternalError
	}
	return payload, apierrors.StatusOK
}

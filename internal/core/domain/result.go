package domain

import (
	"encoding/json"
	"fmt"
)

// Result is the outcome of a service operation: either a value or a categorized failure.
// A Result is immutable once constructed. Callers must check IsSuccess before
// calling Value; reading the value of a failure panics because it indicates a caller bug.
type Result[T any] struct {
	success bool
	value   T
	code    ErrorCode
	message string
	context map[string]any
}

// Success wraps a value in a successful Result.
func Success[T any](value T) Result[T] {
	return Result[T]{success: true, value: value}
}

// Failure builds a failed Result. An empty message is replaced by the code's
// canonical message.
func Failure[T any](code ErrorCode, message string, ctx map[string]any) Result[T] {
	if message == "" {
		message = code.Message()
	}

	return Result[T]{
		code:    code,
		message: message,
		context: copyContext(ctx),
	}
}

// FailureFromError wraps a caught error. The error text becomes the message unless
// override is non-empty; the error itself is recorded under the "exception" context key.
func FailureFromError[T any](err error, code ErrorCode, override string) Result[T] {
	message := override

	if message == "" && err != nil {
		message = err.Error()
	}

	ctx := map[string]any{}

	if err != nil {
		ctx[ContextException] = fmt.Sprintf("%T", err)
	}

	return Failure[T](code, message, ctx)
}

// ForwardFailure re-types a failed Result without altering its code, message or context.
// It panics when given a successful Result.
func ForwardFailure[U, T any](r Result[T]) Result[U] {
	if r.success {
		panic("domain: ForwardFailure called on a successful result")
	}

	return Result[U]{
		code:    r.code,
		message: r.message,
		context: r.context,
	}
}

// IsSuccess reports whether the Result carries a value.
func (r Result[T]) IsSuccess() bool { return r.success }

// IsFailure reports whether the Result carries an error code.
func (r Result[T]) IsFailure() bool { return !r.success }

// Value returns the carried value. It panics on a failed Result.
func (r Result[T]) Value() T {
	if !r.success {
		panic(fmt.Sprintf("domain: Value called on a failed result (%s: %s)", r.code, r.message))
	}

	return r.value
}

// ErrorCode returns the failure code, or zero for a successful Result.
func (r Result[T]) ErrorCode() ErrorCode { return r.code }

// ErrorMessage returns the failure message, or "" for a successful Result.
func (r Result[T]) ErrorMessage() string { return r.message }

// ErrorContext returns a copy of the failure context. It is nil for a successful Result.
func (r Result[T]) ErrorContext() map[string]any { return copyContext(r.context) }

// Provider returns the provider recorded in the failure context, if any.
func (r Result[T]) Provider() string {
	p, _ := r.context[ContextProvider].(string)
	return p
}

// Err converts a failed Result to a *ServiceError and returns nil on success.
func (r Result[T]) Err() error {
	if r.success {
		return nil
	}

	return &ServiceError{Code: r.code, Message: r.message, Context: r.ErrorContext()}
}

type resultJSON[T any] struct {
	Success      bool           `json:"success"`
	Value        *T             `json:"value,omitempty"`
	ErrorCode    ErrorCode      `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	ErrorContext map[string]any `json:"error_context,omitempty"`
}

// MarshalJSON encodes the Result so it can be stored in a cache.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	out := resultJSON[T]{
		Success:      r.success,
		ErrorCode:    r.code,
		ErrorMessage: r.message,
		ErrorContext: r.context,
	}

	if r.success {
		v := r.value
		out.Value = &v
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes a Result previously produced by MarshalJSON.
func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var in resultJSON[T]

	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	if in.Success {
		var v T

		if in.Value != nil {
			v = *in.Value
		}

		*r = Success(v)

		return nil
	}

	if in.ErrorCode == 0 {
		return fmt.Errorf("domain: failed result without error code")
	}

	*r = Failure[T](in.ErrorCode, in.ErrorMessage, in.ErrorContext)

	return nil
}

func copyContext(ctx map[string]any) map[string]any {
	if ctx == nil {
		return nil
	}

	out := make(map[string]any, len(ctx))

	for k, v := range ctx {
		out[k] = v
	}

	return out
}

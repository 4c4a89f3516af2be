package ncerr

// Option is an Error option function
type Option func(*Error)

func WithMessage(msg string) Option    { return func(e *Error) { e.Message = msg } }
func WithType(t Type) Option           { return func(e *Error) { e.Type = t } }
func WithLocation(loc Location) Option { return func(e *Error) { e.Location = &loc } }

// WithCause records err as the underlying cause. If no message has been
// set, the cause's text becomes the error-message.
func WithCause(err error) Option {
	return func(e *Error) {
		e.Cause = err
		if e.Message == "" && err != nil {
			e.Message = err.Error()
		}
	}
}

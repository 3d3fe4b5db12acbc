package xfererr

// Option is an Error option function
type Option func(*Error)

func WithMessage(msg string) Option { return func(e *Error) { e.Message = msg } }
func WithOp(op string) Option       { return func(e *Error) { e.Op = op } }

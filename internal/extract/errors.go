package extract

import "errors"

// ErrSchemaExhausted is returned when the model never produced output that
// satisfies the schema within the attempt budget. Backend failures propagate
// as their own errors and never wrap this sentinel.
var ErrSchemaExhausted = errors.New("structured output never satisfied schema")

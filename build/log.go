// Package build houses the logging backbone shared by the library
// packages. Each package keeps its own logger behind a UseLogger hook and
// stays silent by default; a binary that wants output constructs subsystem
// loggers here and hands them to the packages it uses.
package build

import (
	"io"

	"github.com/btcsuite/btclog/v2"
)

// NewSubLogger constructs a new subsystem logger that writes to w. The
// returned logger tags every line with the given subsystem and filters at
// the default info level until the caller lowers it.
func NewSubLogger(subsystem string, w io.Writer,
	opts ...btclog.HandlerOption) btclog.Logger {

	handler := btclog.NewDefaultHandler(w, opts...)

	return btclog.NewSLogger(handler.SubSystem(subsystem))
}

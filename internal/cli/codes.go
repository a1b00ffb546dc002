package cli

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/zhairuihao/anchor-src-gen/internal/config"
	"github.com/zhairuihao/anchor-src-gen/internal/fetch"
	"github.com/zhairuihao/anchor-src-gen/internal/idl"
)

// Error codes reported in CLI responses.
const (
	CodeReadFailed      = "E001" // input could not be read
	CodeMalformed       = "E002" // document is malformed
	CodeUnsupported     = "E003" // document uses an unsupported construct
	CodeUnresolved      = "E004" // document references an unknown type
	CodeConfigInvalid   = "E005" // batch configuration rejected
	CodeWriteFailed     = "E006" // generated files could not be written
	CodeNotFound        = "E007" // no document at the source
	CodeStoreFailed     = "E008" // history store failed
	CodeInvalidArgument = "E009" // bad flag or argument
)

// LoadError is an error with a CLI code and an optional config position.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s:%d:%d: %s", e.Code, e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// classifyLoad maps an error from reading or parsing a document to a
// LoadError. fallback is used when no category matches.
func classifyLoad(err error, fallback string) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	var ce *config.Error
	if errors.As(err, &ce) {
		return &LoadError{Code: CodeConfigInvalid, Message: ce.Message, Pos: ce.Pos}
	}
	code := fallback
	switch {
	case idl.IsKind(err, idl.KindMalformed):
		code = CodeMalformed
	case idl.IsKind(err, idl.KindUnsupported):
		code = CodeUnsupported
	case idl.IsKind(err, idl.KindUnresolved):
		code = CodeUnresolved
	case errors.Is(err, fetch.ErrNotFound):
		code = CodeNotFound
	}
	return &LoadError{Code: code, Message: err.Error()}
}

// fail reports le through f and returns the matching ExitError.
func fail(f *OutputFormatter, le *LoadError) error {
	var details any
	if le.Pos.IsValid() {
		details = map[string]any{
			"file":   le.Pos.Filename(),
			"line":   le.Pos.Line(),
			"column": le.Pos.Column(),
		}
	}
	if err := f.Error(le.Code, le.Message, details); err != nil {
		return err
	}
	return WrapExitError(ExitCommandError, le.Code+": "+le.Message, nil)
}

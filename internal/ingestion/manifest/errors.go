package manifest

import (
	"errors"
	"fmt"

	"github.com/yungbote/response-validator/internal/platform/apperr"
)

// ParseError names the manifest node that could not be imported.
type ParseError struct {
	Path   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("%s (line %d): %s", e.Path, e.Line, e.Reason)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	default:
		return e.Reason
	}
}

func parseErr(op, path string, line int, format string, args ...any) error {
	pe := &ParseError{Path: path, Line: line, Reason: fmt.Sprintf(format, args...)}
	return apperr.New(apperr.CodeManifestParse, op, pe.Error(), pe)
}

// AsParseError extracts the node details from err.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

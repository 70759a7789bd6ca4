package cli

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// Exit codes of the sidecar process.
const (
	ExitSuccess = 0 // Envelope with ok=true
	ExitFailure = 1 // Envelope with ok=false
)

// Response is the single JSON object written to standard output.
type Response struct {
	OK     bool           `json:"ok"`
	Result any            `json:"result,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the failure payload of a Response.
type ResponseError struct {
	Code    sidecar.Code `json:"code"`
	Message string       `json:"message"`
}

// OutputFormatter writes response envelopes.
type OutputFormatter struct {
	Writer io.Writer
}

// Success writes {"ok": true, "result": result}.
func (f *OutputFormatter) Success(result any) error {
	return f.write(Response{OK: true, Result: result})
}

// Error writes the failure envelope for err.
func (f *OutputFormatter) Error(err error) error {
	return f.write(Response{
		Error: &ResponseError{
			Code:    sidecar.CodeOf(err),
			Message: sidecar.MessageOf(err),
		},
	})
}

func (f *OutputFormatter) write(resp Response) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}

// usageError marks failures from cobra itself (unknown commands, bad
// flags, wrong argument counts) as INVALID_ARGUMENTS. Errors that already
// carry a code pass through.
func usageError(err error) error {
	var se *sidecar.Error
	if err == nil || errors.As(err, &se) {
		return err
	}
	return sidecar.Wrap(sidecar.CodeInvalidArguments, err, "%s", err.Error())
}

// Package json renders run reports for machine consumption
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/arthur-debert/omiros/pkg/ui/view"
)

// Renderer writes one indented JSON document per call
type Renderer struct {
	encoder *json.Encoder
}

// New creates a JSON renderer.
func New(output io.Writer) *Renderer {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{encoder: encoder}
}

// RenderReport encodes the run summary.
func (r *Renderer) RenderReport(report types.RunReport) error {
	return r.encoder.Encode(view.FromReport(report))
}

// RenderError encodes the error with its code and details.
func (r *Renderer) RenderError(err error) error {
	obj := map[string]interface{}{
		"error": err.Error(),
	}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		obj["code"] = string(code)
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		obj["details"] = details
	}
	return r.encoder.Encode(obj)
}

// RenderMessage encodes msg as {"message": msg}.
func (r *Renderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}

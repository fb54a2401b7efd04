// Package apperr holds the error taxonomy shared by the ledger, rasterizer and composer.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidFields = errors.New("invalid fields")
	ErrMissingIcon   = errors.New("missing icon")
	ErrNotFound      = errors.New("not found")
	ErrEmptyLedger   = errors.New("empty ledger")
	ErrUnknownGlyph  = errors.New("unknown glyph")

	// ErrRender matches both RenderError and PartialRenderError via errors.Is.
	ErrRender = errors.New("render failed")
)

// RenderError reports a failed rasterization of one icon.
type RenderError struct {
	IconID string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render icon %q: %v", e.IconID, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRender }

// ItemFailure ties a RenderError to the ledger row that needed it.
type ItemFailure struct {
	Index int
	Name  string
	Err   *RenderError
}

// PartialRenderError aggregates every failed rasterization of one export.
type PartialRenderError struct {
	Total    int
	Failures []ItemFailure
}

func (e *PartialRenderError) Error() string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Name
	}
	return fmt.Sprintf("failed to render %d of %d icons: %s", len(e.Failures), e.Total, strings.Join(names, ", "))
}

func (e *PartialRenderError) Is(target error) bool { return target == ErrRender }

// Unwrap exposes the per-item causes to errors.Is and errors.As.
func (e *PartialRenderError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

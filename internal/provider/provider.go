// Package provider implements the content sources that turn a category
// request into a batch of raw feed items.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/0x0BSoD/newsfeed/internal/model"
)

// DefaultCategory is requested when a caller does not scope a refresh.
const DefaultCategory = "general"

type Provider interface {
	Generate(ctx context.Context, category string) ([]model.RawItem, error)
}

// Func adapts a plain function to Provider.
type Func func(ctx context.Context, category string) ([]model.RawItem, error)

func (f Func) Generate(ctx context.Context, category string) ([]model.RawItem, error) {
	return f(ctx, category)
}

// Error is the only failure kind a provider reports.
type Error struct {
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Provider == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf wraps err into an *Error unless it already is one.
func Errorf(name string, err error, format string, args ...any) error {
	var perr *Error
	if errors.As(err, &perr) {
		return err
	}

	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &Error{Provider: name, Message: msg, Err: err}
}

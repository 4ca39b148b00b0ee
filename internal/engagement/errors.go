package engagement

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidContent is returned for empty or oversized text
	ErrInvalidContent = errors.New("invalid content")
	// ErrNotFound means the target comment is not loaded in this tree
	ErrNotFound = errors.New("comment not found")
	// ErrDepthExceeded is returned when replying below the nested level
	ErrDepthExceeded = errors.New("max reply depth exceeded")
	// ErrInvalidParent means the parent exists but is at the wrong level
	ErrInvalidParent = errors.New("invalid parent")
	// ErrUnconfirmed means the target still has a local id
	ErrUnconfirmed = errors.New("comment not confirmed by server yet")
	// ErrNotEditable is returned for deleted or blocked comments
	ErrNotEditable = errors.New("comment cannot be changed")
	// ErrClosed is returned once the owning screen is gone
	ErrClosed = errors.New("screen closed")
)

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

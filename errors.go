package canopy

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNodeType is returned when a description names a type tag the
	// registry cannot resolve. The affected subtree is not mounted.
	ErrUnknownNodeType = errors.New("unknown node type")
	// ErrInvalidSlotChild is returned in strict mode when a slot-category child
	// is mounted under a parent that has no slot for it.
	ErrInvalidSlotChild = errors.New("invalid slot child")
	// ErrStaleInstance is returned when an operation targets a destroyed instance.
	ErrStaleInstance = errors.New("stale instance reference")
	// ErrNoCamera is returned when a pointer event arrives before a camera is set.
	ErrNoCamera = errors.New("no active camera")
	// ErrNoViewport is returned when a pointer event arrives before the
	// viewport has a size, so its offset cannot be mapped to the view.
	ErrNoViewport = errors.New("viewport size not set")
)

// UnknownNodeTypeError names the unresolved tag.
type UnknownNodeTypeError struct {
	Type string
}

func (e *UnknownNodeTypeError) Error() string {
	return fmt.Sprintf("unknown node type %q", e.Type)
}

func (e *UnknownNodeTypeError) Is(target error) bool {
	return target == ErrUnknownNodeType
}

// InvalidSlotChildError names the parent and child types of a rejected mount.
type InvalidSlotChildError struct {
	Parent string
	Child  string
}

func (e *InvalidSlotChildError) Error() string {
	return fmt.Sprintf("%s cannot hold %s as a slot child", e.Parent, e.Child)
}

func (e *InvalidSlotChildError) Is(target error) bool {
	return target == ErrInvalidSlotChild
}

// ReconcileError wraps a failure in one subtree during Render.
type ReconcileError struct {
	// Op is the reconciler step that failed ("mount", "update", "rebuild", "attach").
	Op string
	// Type is the description's type tag.
	Type string
	// Key is the description's key, if any.
	Key string
	// Err is the underlying error.
	Err error
}

func (e *ReconcileError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s[key=%s]: %v", e.Op, e.Type, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Type, e.Err)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}

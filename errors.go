package stage

import "errors"

// Usage errors. Operations returning them leave all state unchanged.
var (
	// ErrNotRunning is returned when a property is written without an active
	// scene graph.
	ErrNotRunning = errors.New("no running scene graph")
	// ErrNilNode is returned when a nil node is added or removed.
	ErrNilNode = errors.New("nil node")
	// ErrAddSelf is returned when a node is added to itself.
	ErrAddSelf = errors.New("node cannot be added to itself")
	// ErrCycle is returned when a node is added below one of its descendants.
	ErrCycle = errors.New("adding node would create a cycle")
	// ErrRootReparent is returned when a scene root layer is given a parent.
	ErrRootReparent = errors.New("root layer cannot be reparented")
	// ErrRendererIndex is returned for renderer lookups out of range.
	ErrRendererIndex = errors.New("renderer index out of range")
	// ErrPropertyType is returned when a Value cannot be converted to the
	// type a property requires.
	ErrPropertyType = errors.New("property type mismatch")
	// ErrUnknownProperty is returned for an unknown property index.
	ErrUnknownProperty = errors.New("unknown property")
	// ErrReadOnlyProperty is returned when writing a computed property.
	ErrReadOnlyProperty = errors.New("property is read-only")
)

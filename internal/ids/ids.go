// Package ids defines the opaque, value-equal identifiers shared across the
// compositor's subsystems. Every identifier wraps a plain string so it
// compares with ==, serializes as a bare JSON string, and stays stable for
// the lifetime of whatever it names.
package ids

import "github.com/google/uuid"

type InputId string

type OutputId string

type ComponentId string

type RendererId string

// NewComponentId returns a fresh, process-unique ComponentId for callers
// that don't need continuity across scene updates (continuity requires the
// caller to reuse an existing id on purpose, so generation never happens
// implicitly inside scene.SceneState).
func NewComponentId() ComponentId {
	return ComponentId(uuid.NewString())
}

package audit

import "strings"

// ActionResource holds action and resource derived from an event type.
type ActionResource struct {
	Action   string
	Resource string
}

// ParseEventType splits a dotted event type (e.g. room.join_rejected) into resource "room" and action
// "join_rejected". Types without a dot map to resource "unknown".
func ParseEventType(eventType string) ActionResource {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	resource, action, ok := strings.Cut(eventType, ".")
	if !ok || resource == "" {
		return ActionResource{Action: strings.ToLower(eventType), Resource: "unknown"}
	}
	if action == "" {
		action = "unknown"
	}
	return ActionResource{Action: strings.ToLower(action), Resource: strings.ToLower(resource)}
}

package audit

import (
	"time"

	"github.com/google/uuid"
)

type (
	Category string
	Severity string
)

const (
	CategoryAuth     Category = "auth"
	CategoryFile     Category = "file"
	CategoryFolder   Category = "folder"
	CategorySystem   Category = "system"
	CategoryAccount  Category = "account"
	CategorySecurity Category = "security"
)

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAuth, CategoryFile, CategoryFolder, CategorySystem, CategoryAccount, CategorySecurity:
		return true
	}
	return false
}

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

type Event struct {
	ID       uuid.UUID         `json:"event_id"`
	TS       time.Time         `json:"time_stamp"`
	ActorID  *uuid.UUID        `json:"actor_id,omitempty"`
	Category Category          `json:"category"`
	Severity Severity          `json:"severity"`
	Action   string            `json:"action"`
	Detail   string            `json:"detail,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// New stamps an event with a fresh id.
func New(ts time.Time, actor *uuid.UUID, c Category, s Severity, action, detail string) Event {
	return Event{
		ID:       uuid.New(),
		TS:       ts,
		ActorID:  actor,
		Category: c,
		Severity: s,
		Action:   action,
		Detail:   detail,
	}
}

func (e Event) With(key, value string) Event {
	md := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		md[k] = v
	}
	md[key] = value
	e.Metadata = md
	return e
}

// RoutingKey is "<category>.<severity>".
func (e Event) RoutingKey() string { return string(e.Category) + "." + string(e.Severity) }

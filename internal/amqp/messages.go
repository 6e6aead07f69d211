package amqp

import (
	"encoding/json"
	"time"
)

// ChangeEvent tells external reactive consumers that a record changed.
// It carries identifiers only; consumers fetch current state themselves,
// so a stale event can never deliver a stale balance.
type ChangeEvent struct {
	Entity    string    `json:"entity"` // "transaction", "account", "goal", "user"
	EntityID  string    `json:"entity_id"`
	OwnerID   string    `json:"owner_id"`
	Action    string    `json:"action"` // "created", "updated", "deleted", "migrated"
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeEvent(entity, entityID, ownerID, action string) *ChangeEvent {
	return &ChangeEvent{
		Entity:    entity,
		EntityID:  entityID,
		OwnerID:   ownerID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

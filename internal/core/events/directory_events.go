package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSyncCompleted     = "directory.sync.completed"
	EventTypeTransferCompleted = "directory.transfer.completed"
)

type SyncCompletedEvent struct {
	BaseEvent
	Actor              string   `json:"actor"`
	Total              int      `json:"total"`
	Synced             int      `json:"synced"`
	Skipped            int      `json:"skipped"`
	MissingDepartments []string `json:"missing_departments,omitempty"`
}

func NewSyncCompletedEvent(actor string, total, synced, skipped int, missing []string) *SyncCompletedEvent {
	return &SyncCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSyncCompleted,
			Timestamp: time.Now(),
		},
		Actor:              actor,
		Total:              total,
		Synced:             synced,
		Skipped:            skipped,
		MissingDepartments: missing,
	}
}

type TransferCompletedEvent struct {
	BaseEvent
	TransferID string `json:"transfer_id"`
	Actor      string `json:"actor"`
	Login      string `json:"login"`
	OldOU      string `json:"old_ou"`
	NewOU      string `json:"new_ou"`
	Status     string `json:"status"`
}

func NewTransferCompletedEvent(transferID, actor, login, oldOU, newOU, status string) *TransferCompletedEvent {
	return &TransferCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTransferCompleted,
			Timestamp: time.Now(),
		},
		TransferID: transferID,
		Actor:      actor,
		Login:      login,
		OldOU:      oldOU,
		NewOU:      newOU,
		Status:     status,
	}
}

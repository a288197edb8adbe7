package models

// SyncState represents the preview synchronizer state for a designer session.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncPending SyncState = "pending"
	SyncSyncing SyncState = "syncing"
	SyncError   SyncState = "error"
)

// SyncStatus is the operator-visible preview synchronization status.
// LastError is transient: it is replaced by the next successful sync.
type SyncStatus struct {
	State        SyncState `json:"state"`
	Seq          uint64    `json:"seq"`
	LastError    string    `json:"lastError,omitempty"`
	LastSyncedAt int64     `json:"lastSyncedAt,omitempty"` // Unix ms
}

// DefaultVariant is the variant name auto-loaded when a designer session opens.
const DefaultVariant = "default"

// DesignSession represents one operator's label design session for a device.
type DesignSession struct {
	ID        string  `json:"id"`
	PrinterIP string  `json:"printerIp"`
	Printer   Printer `json:"printer"`
	Canvas    Canvas  `json:"canvas"`
	Variant   string  `json:"variant"`   // active variant name
	Loaded    bool    `json:"loaded"`    // whether the variant existed at open/load
	CreatedAt int64   `json:"createdAt"` // Unix ms
}

// VariantInfo describes a saved label variant for a device.
type VariantInfo struct {
	Name      string `json:"name"`
	UpdatedAt int64  `json:"updatedAt"` // Unix ms
}

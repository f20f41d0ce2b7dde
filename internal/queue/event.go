// Package queue defines message payloads exchanged over the message broker.
package queue

// PassDecidedEvent is published when an admin approves or rejects a pass.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.  ValidFrom
// and ValidTill are empty for rejections.
type PassDecidedEvent struct {
    PassID      uint64 `json:"pass_id"`
    OwnerID     uint64 `json:"owner_id"`
    Tier        string `json:"tier"`
    Price       uint32 `json:"price"`
    Source      string `json:"source"`
    Destination string `json:"destination"`
    Decision    string `json:"decision"` // "approved" or "rejected"
    ValidFrom   string `json:"valid_from,omitempty"`
    ValidTill   string `json:"valid_till,omitempty"`
    DecidedAt   string `json:"decided_at"`
}

package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"salesdash/internal/core"
	"salesdash/internal/dashboard"
)

// SnapshotSchemaVersion is bumped when SnapshotMessage changes shape.
const SnapshotSchemaVersion = 1

// SnapshotMessage carries one branch summary to downstream consumers.
type SnapshotMessage struct {
	SchemaVersion int               `json:"schemaVersion"`
	Branch        core.BranchID     `json:"branch"`
	GeneratedAt   time.Time         `json:"generatedAt"`
	Summary       dashboard.Summary `json:"summary"`
}

func NewSnapshotMessage(s dashboard.Summary) *SnapshotMessage {
	return &SnapshotMessage{
		SchemaVersion: SnapshotSchemaVersion,
		Branch:        s.Branch,
		GeneratedAt:   time.Now().UTC(),
		Summary:       s,
	}
}

func (m *SnapshotMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotMessageFromJSON decodes a message and rejects unknown schema versions.
func SnapshotMessageFromJSON(data []byte) (*SnapshotMessage, error) {
	var msg SnapshotMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.SchemaVersion != SnapshotSchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot schema version %d", msg.SchemaVersion)
	}
	if msg.Summary.Branch != msg.Branch {
		return nil, fmt.Errorf("snapshot branch %s does not match summary branch %s", msg.Branch, msg.Summary.Branch)
	}
	return &msg, nil
}

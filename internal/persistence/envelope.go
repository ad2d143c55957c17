// Package persistence stores the finance state snapshot as a single JSON
// blob, either on local disk or in a Cloud Storage bucket.
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/dvloznov/finance-copilot/internal/store"
)

// DefaultName is the blob name used when none is configured.
const DefaultName = "finance-storage"

// envelopeVersion is written with every blob. Readers accept any version.
const envelopeVersion = 0

type envelope struct {
	State   store.Snapshot `json:"state"`
	Version int            `json:"version"`
}

// Encode wraps snap in the persisted envelope.
func Encode(snap store.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(envelope{State: snap, Version: envelopeVersion}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("Encode: marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode unwraps a persisted envelope.
func Decode(data []byte) (store.Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return store.Snapshot{}, fmt.Errorf("Decode: unmarshal snapshot: %w", err)
	}
	return env.State, nil
}

func objectName(name string) string {
	if name == "" {
		name = DefaultName
	}
	return name + ".json"
}

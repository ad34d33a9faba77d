package reactor

import (
	"encoding/json"

	"reactorviz/domain/core"
)

// Fingerprint digests the records in source order. Two loads of an unchanged
// sheet give the same fingerprint.
func Fingerprint(reactors []Reactor) (core.Hash, error) {
	raw, err := json.Marshal(reactors)
	if err != nil {
		return "", err
	}
	return core.NewHash(raw), nil
}

package domain

import (
	"encoding/json"
	"fmt"

	"github.com/phrazzld/natours-api/internal/fault"
)

// ApplyPatch overlays the fields present in patch onto the tour. Identity,
// creation time and version cannot be changed this way.
func (t *Tour) ApplyPatch(patch map[string]any) error {
	id, created, version := t.ID, t.CreatedAt, t.Version
	if err := applyPatch(patch, t); err != nil {
		return err
	}
	t.ID, t.CreatedAt, t.Version = id, created, version
	return nil
}

// ApplyPatch overlays the fields present in patch onto the user's public
// profile. Credentials and reset state have no JSON form and are never
// touched.
func (u *User) ApplyPatch(patch map[string]any) error {
	id, changed := u.ID, u.PasswordChangedAt
	if err := applyPatch(patch, u); err != nil {
		return err
	}
	u.ID, u.PasswordChangedAt = id, changed
	return nil
}

func applyPatch(patch map[string]any, v any) error {
	if len(patch) == 0 {
		return nil
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to encode patch: %w", err)
	}
	return fault.DecodeError(json.Unmarshal(raw, v))
}

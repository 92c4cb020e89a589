package crm

import (
	"strings"

	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/google/uuid"
)

// NormalizeClientIDs turns the raw client id values of a form into a set.
//
// A form may submit the field zero, one or many times; callers pass every
// submitted value. Blank values are dropped, duplicates collapse onto their
// first occurrence, and a value that is not a UUID is a validation error.
// An empty result is not an error here: emptiness is checked by the
// appointment itself.
func NormalizeClientIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]struct{}, len(raw))

	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		id, err := uuid.Parse(v)
		if err != nil || id == uuid.Nil {
			return nil, shared.NewValidationError("Invalid client selection.")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

package grid

import (
	"strings"

	"github.com/google/uuid"

	"github.com/coastgrid/coastgrid/internal/domain"
)

// idLength is the length of generated cell id tokens.
const idLength = 8

// AssignIDs ensures every cell has a unique non-empty string id. Cells
// with a valid id not seen earlier in the table keep it unchanged;
// empty and duplicate ids are replaced with fresh tokens, retrying on
// the (unlikely) collision with an existing id.
func AssignIDs(cells []domain.Cell) []domain.Cell {
	out := make([]domain.Cell, len(cells))
	copy(out, cells)

	taken := make(map[string]struct{}, len(out))
	for _, c := range out {
		if c.ID != "" {
			if _, dup := taken[c.ID]; !dup {
				taken[c.ID] = struct{}{}
			}
		}
	}

	seen := make(map[string]struct{}, len(out))
	for i := range out {
		id := out[i].ID
		_, dup := seen[id]
		if id == "" || dup {
			id = newID(taken)
			taken[id] = struct{}{}
			out[i].ID = id
		}
		seen[id] = struct{}{}
	}
	return out
}

// newID generates a short alphanumeric token not present in taken.
func newID(taken map[string]struct{}) string {
	for {
		token := strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
		if _, exists := taken[token]; !exists {
			return token
		}
	}
}

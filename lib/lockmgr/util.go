package lockmgr

import (
	"github.com/google/uuid"
)

// generateOwnerID creates a new unique owner ID for a lock acquisition.
func generateOwnerID() ([]byte, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	b := id[:]
	return b, nil
}

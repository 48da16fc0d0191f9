package delivery

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source repo_port.go -destination mock_repo.go -package delivery

type Repo interface {
	Create(ctx context.Context, info Info) error
	FindByID(ctx context.Context, id string) (Info, error)
	FindByOwner(ctx context.Context, userID uuid.UUID) ([]Info, error)

	// Update overwrites the editable fields. Returns false when no
	// record matched.
	Update(ctx context.Context, id string, fields Fields) (bool, error)

	// Delete returns false when the record did not exist.
	Delete(ctx context.Context, id string) (bool, error)
}

package postgre

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/friendsofgo/errors"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/recordstore"
	postgresPkg "github.com/Jim-devENG/ispora-engine-sub009/pkg/postgre"
)

func (r *implRepository) IsActiveUser(ctx context.Context, userID string) (bool, error) {
	if err := postgresPkg.IsUUID(userID); err != nil {
		return false, fmt.Errorf("%w: %v", recordstore.ErrNotFound, err)
	}

	var row userRow
	if err := queries.Raw(userQuery, userID).Bind(ctx, r.db, &row); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return false, recordstore.ErrNotFound
		}
		r.l.Errorf(ctx, "internal.recordstore.repository.postgre.IsActiveUser.Bind: %v", err)
		return false, errors.Wrap(err, "postgre: load user")
	}

	if row.DeletedAt.Valid {
		return false, nil
	}
	// A missing flag means the column was never set; such accounts are active.
	return !row.IsActive.Valid || row.IsActive.Bool, nil
}

func (r *implRepository) RoomOf(ctx context.Context, entityType, entityID string) (string, error) {
	table, ok := r.entities[entityType]
	if !ok {
		return "", fmt.Errorf("%w: %q", recordstore.ErrUnknownEntity, entityType)
	}
	if err := postgresPkg.IsUUID(entityID); err != nil {
		return "", fmt.Errorf("%w: %v", recordstore.ErrNotFound, err)
	}

	var row roomRow
	if err := queries.Raw(table.query(), entityID).Bind(ctx, r.db, &row); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return "", recordstore.ErrNotFound
		}
		r.l.Errorf(ctx, "internal.recordstore.repository.postgre.RoomOf.Bind: %v", err)
		return "", errors.Wrapf(err, "postgre: load %s", entityType)
	}

	if row.DeletedAt.Valid || !row.RoomID.Valid || row.RoomID.String == "" {
		return "", recordstore.ErrNotFound
	}
	return row.RoomID.String, nil
}

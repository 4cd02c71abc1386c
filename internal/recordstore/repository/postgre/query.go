package postgre

import (
	"fmt"

	"github.com/aarondl/null/v8"
)

// entityTable tells RoomOf where an entity type lives and which column holds
// the id of the room its events go to.
type entityTable struct {
	table      string
	roomColumn string
}

// Projects are their own room. Everything else broadcasts to its project.
var defaultEntities = map[string]entityTable{
	"project":   {table: "projects", roomColumn: "id"},
	"task":      {table: "tasks", roomColumn: "project_id"},
	"milestone": {table: "milestones", roomColumn: "project_id"},
	"message":   {table: "messages", roomColumn: "project_id"},
	"session":   {table: "sessions", roomColumn: "project_id"},
}

type userRow struct {
	IsActive  null.Bool `boil:"is_active"`
	DeletedAt null.Time `boil:"deleted_at"`
}

type roomRow struct {
	RoomID    null.String `boil:"room_id"`
	DeletedAt null.Time   `boil:"deleted_at"`
}

const userQuery = `SELECT is_active, deleted_at FROM users WHERE id = $1`

func (e entityTable) query() string {
	return fmt.Sprintf(`SELECT %s::text AS room_id, deleted_at FROM %s WHERE id = $1`, e.roomColumn, e.table)
}

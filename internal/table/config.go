package table

import (
	"context"

	"github.com/iliyamo/philharmonic-console/internal/model"
)

// Column is one displayed field.  Format, when set, renders the raw value;
// the whole row is passed for columns derived from several fields.
type Column struct {
	Key      string
	Label    string
	Sortable bool
	Format   func(v any, row model.Entity) string
}

// Config describes one entity screen.  Implementations are immutable; the
// optional capabilities Creatable, Editable and Deletable decide which
// controls may appear, and only for sessions whose role equals Role.
type Config interface {
	Title() string
	Endpoint() string
	Columns() []Column
	SearchFields() []string
	Role() model.Role
	Kind() model.Kind
}

// Creatable configs offer a Create control.
type Creatable interface {
	Create(ctx context.Context, t *Table)
}

// Editable configs offer an Edit control per row.  item is the full entity
// fetched by id, or a partial one rebuilt from the rendered row.
type Editable interface {
	Edit(ctx context.Context, t *Table, item model.Entity)
}

// Deletable configs offer a Delete control per row.  Delete performs the
// network call only; it runs without the screen lock.  id is always the
// bare identifier.
type Deletable interface {
	Delete(ctx context.Context, id string) error
}

// Spec is a plain Config.  Views embed it and add capability methods.
type Spec struct {
	TitleText  string
	Path       string
	Cols       []Column
	Search     []string
	Privileged model.Role
	EntityKind model.Kind
}

func (s Spec) Title() string          { return s.TitleText }
func (s Spec) Endpoint() string       { return s.Path }
func (s Spec) Columns() []Column      { return s.Cols }
func (s Spec) SearchFields() []string { return s.Search }
func (s Spec) Role() model.Role       { return s.Privileged }
func (s Spec) Kind() model.Kind       { return s.EntityKind }

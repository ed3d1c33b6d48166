package schema

import (
	"fmt"
	"strconv"
	"strings"

	"gridbase/api"
)

// ── Field map ───────────────────────────────────────────────
// The backend keys row payloads by field identifier ("field_42") and
// stores selections as option ids. A FieldMap is the per-table
// translation table between that wire form and the display names and
// option labels callers work with.

// FieldKind classifies how values of a field translate between wire
// and caller form.
type FieldKind int

const (
	KindPlain FieldKind = iota
	KindSingleSelect
	KindMultipleSelect
	KindLinkRow
)

func (k FieldKind) String() string {
	switch k {
	case KindSingleSelect:
		return "single_select"
	case KindMultipleSelect:
		return "multiple_select"
	case KindLinkRow:
		return "link_row"
	default:
		return "plain"
	}
}

func kindOf(wireType string) FieldKind {
	switch wireType {
	case "single_select":
		return KindSingleSelect
	case "multiple_select":
		return KindMultipleSelect
	case "link_row":
		return KindLinkRow
	default:
		return KindPlain
	}
}

// Field is the resolved view of one table column.
type Field struct {
	ID       int64
	Name     string
	Type     string
	Kind     FieldKind
	Primary  bool
	ReadOnly bool

	labelByOption map[int64]string
	optionByLabel map[string]int64
}

// OptionLabel resolves an option id to its label.
func (f *Field) OptionLabel(id int64) (string, bool) {
	label, ok := f.labelByOption[id]
	return label, ok
}

// OptionID resolves an option label to its id.
func (f *Field) OptionID(label string) (int64, bool) {
	id, ok := f.optionByLabel[label]
	return id, ok
}

// FieldMap resolves between display names and wire identifiers for a
// single table. It is immutable once built.
type FieldMap struct {
	TableID int64

	byID   map[int64]*Field
	byName map[string]*Field
	fields []*Field
}

// Build resolves a raw field listing into a FieldMap. Option ids are
// scoped to their field, never pooled across the table. Duplicate
// display names or duplicate identifiers are rejected: resolution has
// to stay unambiguous in both directions, silently picking one field
// would misdirect writes.
func Build(tableID int64, raw []api.Field) (*FieldMap, error) {
	fm := &FieldMap{
		TableID: tableID,
		byID:    make(map[int64]*Field, len(raw)),
		byName:  make(map[string]*Field, len(raw)),
		fields:  make([]*Field, 0, len(raw)),
	}
	for _, rf := range raw {
		if rf.Name == "" {
			return nil, fmt.Errorf("field %d of table %d has a blank name", rf.ID, tableID)
		}
		if _, dup := fm.byID[rf.ID]; dup {
			return nil, fmt.Errorf("%w: field id %d appears twice in table %d", ErrAmbiguousFieldName, rf.ID, tableID)
		}
		if _, dup := fm.byName[rf.Name]; dup {
			return nil, fmt.Errorf("%w: %q appears twice in table %d", ErrAmbiguousFieldName, rf.Name, tableID)
		}

		f := &Field{
			ID:       rf.ID,
			Name:     rf.Name,
			Type:     rf.Type,
			Kind:     kindOf(rf.Type),
			Primary:  rf.Primary,
			ReadOnly: rf.ReadOnly,
		}
		if len(rf.SelectOptions) > 0 {
			f.labelByOption = make(map[int64]string, len(rf.SelectOptions))
			f.optionByLabel = make(map[string]int64, len(rf.SelectOptions))
			for _, opt := range rf.SelectOptions {
				f.labelByOption[opt.ID] = opt.Value
				f.optionByLabel[opt.Value] = opt.ID
			}
		}

		fm.byID[rf.ID] = f
		fm.byName[rf.Name] = f
		fm.fields = append(fm.fields, f)
	}
	return fm, nil
}

// ByName looks a field up by its display name.
func (m *FieldMap) ByName(name string) (*Field, bool) {
	f, ok := m.byName[name]
	return f, ok
}

// ByID looks a field up by its wire identifier.
func (m *FieldMap) ByID(id int64) (*Field, bool) {
	f, ok := m.byID[id]
	return f, ok
}

// Fields returns the table's fields in backend order.
func (m *FieldMap) Fields() []*Field { return m.fields }

// ── Wire keys ───────────────────────────────────────────────

const wireKeyPrefix = "field_"

func wireKey(id int64) string {
	return wireKeyPrefix + strconv.FormatInt(id, 10)
}

func parseWireKey(key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, wireKeyPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridbase/api"
)

// testFieldMap builds the fixture table shared by the codec tests.
func testFieldMap(t *testing.T) *FieldMap {
	t.Helper()
	fm, err := Build(42, []api.Field{
		{ID: 1, Name: "Name", Type: "text", Primary: true},
		{ID: 2, Name: "Status", Type: "single_select", SelectOptions: []api.SelectOption{
			{ID: 10, Value: "Open", Color: "blue"},
			{ID: 11, Value: "Done", Color: "green"},
		}},
		{ID: 3, Name: "Tags", Type: "multiple_select", SelectOptions: []api.SelectOption{
			{ID: 20, Value: "red"},
			{ID: 21, Value: "blue"},
		}},
		{ID: 4, Name: "Parent", Type: "link_row"},
		{ID: 5, Name: "Created", Type: "created_on", ReadOnly: true},
	})
	require.NoError(t, err)
	return fm
}

func TestBuildResolvesBothDirections(t *testing.T) {
	fm := testFieldMap(t)

	byName, ok := fm.ByName("Status")
	require.True(t, ok)
	assert.Equal(t, int64(2), byName.ID)
	assert.Equal(t, KindSingleSelect, byName.Kind)

	byID, ok := fm.ByID(2)
	require.True(t, ok)
	assert.Same(t, byName, byID)

	label, ok := byName.OptionLabel(10)
	require.True(t, ok)
	assert.Equal(t, "Open", label)

	id, ok := byName.OptionID("Done")
	require.True(t, ok)
	assert.Equal(t, int64(11), id)

	_, ok = fm.ByName("Nope")
	assert.False(t, ok)
}

func TestBuildKeepsBackendOrder(t *testing.T) {
	fm := testFieldMap(t)

	var names []string
	for _, f := range fm.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Name", "Status", "Tags", "Parent", "Created"}, names)
}

func TestBuildOptionsScopedPerField(t *testing.T) {
	fm := testFieldMap(t)

	status, _ := fm.ByName("Status")
	_, ok := status.OptionLabel(20)
	assert.False(t, ok, "option 20 belongs to Tags, not Status")

	tags, _ := fm.ByName("Tags")
	label, ok := tags.OptionLabel(20)
	require.True(t, ok)
	assert.Equal(t, "red", label)
}

func TestBuildRejectsDuplicateNames(t *testing.T) {
	_, err := Build(7, []api.Field{
		{ID: 1, Name: "Amount", Type: "number"},
		{ID: 2, Name: "Amount", Type: "text"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousFieldName)
	assert.Contains(t, err.Error(), "Amount")
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	_, err := Build(7, []api.Field{
		{ID: 1, Name: "A", Type: "text"},
		{ID: 1, Name: "B", Type: "text"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousFieldName)
}

func TestBuildRejectsBlankName(t *testing.T) {
	_, err := Build(7, []api.Field{{ID: 1, Name: "", Type: "text"}})
	require.Error(t, err)
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		wireType string
		want     FieldKind
	}{
		{"text", KindPlain},
		{"number", KindPlain},
		{"boolean", KindPlain},
		{"created_on", KindPlain},
		{"single_select", KindSingleSelect},
		{"multiple_select", KindMultipleSelect},
		{"link_row", KindLinkRow},
	}
	for _, tc := range cases {
		t.Run(tc.wireType, func(t *testing.T) {
			assert.Equal(t, tc.want, kindOf(tc.wireType))
		})
	}
}

func TestWireKeyRoundTrip(t *testing.T) {
	assert.Equal(t, "field_42", wireKey(42))

	id, ok := parseWireKey("field_42")
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = parseWireKey("order")
	assert.False(t, ok)
	_, ok = parseWireKey("field_x")
	assert.False(t, ok)
}

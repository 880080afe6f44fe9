package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-fieldset/pkg/model"
	"github.com/goliatone/go-fieldset/pkg/store/memory"
)

type user struct {
	ID    int    `fieldset:"id,pk"`
	Email string `fieldset:"email,required,maxlength=40"`
}

func (u *user) String() string { return u.Email }

var tagClass = model.MustRecordClass(&model.Schema{
	Name: "Tag",
	Attributes: []model.Attribute{
		{Name: "id", Type: model.FieldTypeString, PrimaryKey: true},
		{Name: "label", Type: model.FieldTypeString, Nullable: true},
	},
})

func TestStore_SaveAssignsSequenceKeys(t *testing.T) {
	store := memory.New()
	a := &user{Email: "a@example.com"}
	b := &user{Email: "b@example.com"}
	store.MustSave(model.MustWrap(a), model.MustWrap(b))

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
	assert.Equal(t, 2, store.Count("user"))

	c := &user{ID: 10, Email: "c@example.com"}
	require.NoError(t, store.Save(model.MustWrap(c)))
	d := &user{Email: "d@example.com"}
	require.NoError(t, store.Save(model.MustWrap(d)))
	assert.Equal(t, 11, d.ID)
}

func TestStore_SaveAssignsULIDForStringKeys(t *testing.T) {
	store := memory.New()
	rec, err := tagClass.NewRecord(map[string]any{"label": "go"})
	require.NoError(t, err)
	require.NoError(t, store.Save(rec))

	id, ok := rec.Get("id").(string)
	require.True(t, ok)
	assert.Len(t, id, 26)
	assert.Same(t, store, rec.Session())
}

func TestStore_CandidatesAndLookupOrder(t *testing.T) {
	store := memory.New()
	first := model.MustWrap(&user{Email: "first@example.com"})
	second := model.MustWrap(&user{Email: "second@example.com"})
	third := model.MustWrap(&user{Email: "third@example.com"})
	store.MustSave(first, second, third)

	candidates, err := store.Candidates("user")
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "first@example.com", model.Display(candidates[0]))

	found, err := store.Lookup("user", []any{"3", int64(1), 99})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "third@example.com", model.Display(found[0]))
	assert.Equal(t, "first@example.com", model.Display(found[1]))
}

func TestStore_SaveReplacesAndDeletes(t *testing.T) {
	store := memory.New()
	u := &user{Email: "a@example.com"}
	store.MustSave(model.MustWrap(u))

	u2 := &user{ID: u.ID, Email: "changed@example.com"}
	store.MustSave(model.MustWrap(u2))
	assert.Equal(t, 1, store.Count("user"))

	got, ok := store.Get("user", 1)
	require.True(t, ok)
	assert.Equal(t, "changed@example.com", model.Display(got))

	assert.True(t, store.Delete("user", 1))
	assert.False(t, store.Delete("user", 1))
	assert.Equal(t, 0, store.Count("user"))
}

func TestStore_SaveRejectsKeylessSchemas(t *testing.T) {
	class := model.MustRecordClass(&model.Schema{
		Name:       "Note",
		Attributes: []model.Attribute{{Name: "body", Type: model.FieldTypeText, Nullable: true}},
	})
	inst, err := class.New()
	require.NoError(t, err)
	assert.ErrorIs(t, memory.New().Save(inst), memory.ErrNoPrimaryKey)
}

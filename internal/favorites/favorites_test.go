package favorites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesavant42/countrysearch/internal/store"
)

func TestAddRemoveIdempotent(t *testing.T) {
	r := New(store.NewMemory(0), nil)
	assert.Equal(t, []string{}, r.List())

	r.Add("Japan")
	r.Add("Japan")
	assert.Equal(t, []string{"Japan"}, r.List())
	assert.True(t, r.IsFavorite("Japan"))

	r.Remove("Japan")
	r.Remove("Japan")
	assert.Equal(t, []string{}, r.List())
	assert.False(t, r.IsFavorite("Japan"))
}

func TestAddThenRemoveRestoresMembership(t *testing.T) {
	r := New(store.NewMemory(0), nil)
	r.Add("Chile")
	r.Add("Peru")
	before := r.List()

	r.Add("Bolivia")
	r.Remove("Bolivia")
	assert.Equal(t, before, r.List())
}

func TestInsertionOrderPreserved(t *testing.T) {
	r := New(store.NewMemory(0), nil)
	for _, name := range []string{"Peru", "Chile", "Argentina"} {
		r.Add(name)
	}
	r.Remove("Chile")
	assert.Equal(t, []string{"Peru", "Argentina"}, r.List())
}

func TestToggle(t *testing.T) {
	s := store.NewMemory(0)
	r := New(s, nil)

	assert.True(t, r.Toggle("Kenya"))
	assert.False(t, r.Toggle("Kenya"))
	assert.True(t, r.Toggle("Kenya"))

	raw, ok, err := s.Get(Key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `["Kenya"]`, raw)
}

func TestRemoveAbsentDoesNotWrite(t *testing.T) {
	s := store.NewMemory(0)
	New(s, nil).Remove("Nowhere")
	assert.Equal(t, 0, s.Len())
}

func TestWriteFailureIsNonFatal(t *testing.T) {
	r := New(store.NewMemory(4), nil)

	assert.NotPanics(t, func() { r.Add("Mongolia") })
	assert.False(t, r.Toggle("Mongolia"), "toggle reports what was stored")
	assert.Equal(t, []string{}, r.List())
}

func TestCorruptedFavoritesReadEmpty(t *testing.T) {
	s := store.NewMemory(0)
	require.NoError(t, s.Set(Key, `not json`))

	r := New(s, nil)
	assert.Equal(t, []string{}, r.List())
	r.Add("Fiji")
	assert.Equal(t, []string{"Fiji"}, r.List())
}

package schema

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-dataflow/dataflow"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	name := dataflow.NewKeyword(":person/name")
	age := dataflow.NewKeyword(":person/age")

	assert.Equal(t, 0, reg.Define(name))
	assert.Equal(t, 1, reg.Define(age))
	assert.Equal(t, 0, reg.Define(name), "re-defining returns the existing id")

	id, err := reg.AttrID(age)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	_, err = reg.AttrID(dataflow.NewKeyword(":missing"))
	require.Error(t, err)
	var unknown *UnknownAttributeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, ":missing", unknown.Attr.String())

	assert.Len(t, reg.Keywords(), 2)
}

func TestRegistryFromMap(t *testing.T) {
	reg := NewRegistryFromMap(map[string]int{
		":assign/time":  1,
		":assign/key":   2,
		":assign/value": 3,
	})

	id, err := reg.AttrID(dataflow.NewKeyword(":assign/key"))
	require.NoError(t, err)
	assert.Equal(t, 2, id)

	// Ids continue after the largest explicit assignment
	assert.Equal(t, 4, reg.Define(dataflow.NewKeyword(":assign/op")))
}

func TestBadgerRegistry(t *testing.T) {
	dir, err := os.MkdirTemp("", "schema-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	reg, err := OpenBadgerRegistry(dir)
	require.NoError(t, err)

	name := dataflow.NewKeyword(":person/name")
	age := dataflow.NewKeyword(":person/age")

	nameID, err := reg.Define(name)
	require.NoError(t, err)
	ageID, err := reg.Define(age)
	require.NoError(t, err)
	assert.NotEqual(t, nameID, ageID)

	again, err := reg.Define(name)
	require.NoError(t, err)
	assert.Equal(t, nameID, again, "re-defining returns the existing id")

	id, err := reg.AttrID(name)
	require.NoError(t, err)
	assert.Equal(t, nameID, id)

	require.NoError(t, reg.Close())

	// Mappings survive a reopen
	reg, err = OpenBadgerRegistry(dir)
	require.NoError(t, err)
	defer reg.Close()

	id, err = reg.AttrID(age)
	require.NoError(t, err)
	assert.Equal(t, ageID, id)

	_, err = reg.AttrID(dataflow.NewKeyword(":missing"))
	var unknown *UnknownAttributeError
	require.ErrorAs(t, err, &unknown)

	assert.Len(t, reg.Keywords(), 2)
}

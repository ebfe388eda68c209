package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `validate:"required,max=5"`
	Year int    `validate:"required"`
}

func TestStructCollectsFieldErrors(t *testing.T) {
	err := Struct(sample{Name: "toolong"})
	require.Error(t, err)

	var errs Errs
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 2)
	assert.Equal(t, "name: must be at most 5 characters; year: required", err.Error())
}

func TestStructPasses(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "Heat", Year: 1995}))
}

func TestPartialChecksOnlyNamedFields(t *testing.T) {
	assert.NoError(t, Partial(sample{Name: "Heat"}, "Name"))
	assert.NoError(t, Partial(sample{}))

	err := Partial(sample{Year: 1995}, "Name")
	require.Error(t, err)
	assert.Equal(t, "name: required", err.Error())
}

package forms

import (
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formerrors "github.com/a3tai/mcp-pdf-formfix/internal/pdf/errors"
)

func TestStripTextBorders(t *testing.T) {
	f := newFormFixture(t, 2)
	name := f.addText(0, "name", Rect{X0: 50, Y0: 750, X1: 300, Y1: 770})
	date := f.addText(1, "date", Rect{X0: 50, Y0: 600, X1: 300, Y1: 620})
	radio := f.addRadio(0, "q", rectLeft, "Yes")

	issues := formerrors.NewErrorCollection("")
	changed, err := StripTextBorders(f.a, issues, false)

	require.NoError(t, err)
	assert.Equal(t, 2, changed)
	assert.Empty(t, issues.Issues)
	for _, id := range []int{name, date} {
		d := f.dict(id)
		assert.Equal(t, types.Array{types.Integer(0), types.Integer(0), types.Integer(0)}, d["Border"])
		assert.Equal(t, types.Dict{"S": types.Name("S"), "W": types.Integer(0)}, d["BS"])
	}
	assert.NotContains(t, f.dict(radio), "Border")
}

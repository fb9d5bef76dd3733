package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func TestNormalizeAndSplit(t *testing.T) {
	assert.Equal(t, []string{"Product", "City"}, Normalize([]string{" Product ", "", "City", "Product", "  "}))
	assert.Equal(t, []string{"Product", "HS Code", "City"}, Split("Product; HS Code ;;City;Product"))
	assert.Equal(t, []string{}, Split(""))
	assert.Equal(t, []string{"A"}, Parse([]string{"A"}, "B;C"))
	assert.Equal(t, []string{"B", "C"}, Parse(nil, "B;C"))
}

func TestIsPriority(t *testing.T) {
	for _, n := range []string{"Product", "PRODUCT", "Indian Company", "IndianCompany", "foreign  company", " Foreign Company "} {
		assert.True(t, IsPriority(n), n)
	}
	for _, n := range []string{"Products", "Company", "Indian", ""} {
		assert.False(t, IsPriority(n), n)
	}
}

func TestControlID(t *testing.T) {
	assert.Equal(t, "column-HS-Code", ControlID("HS Code"))
	assert.Equal(t, "column-Indian-Company", ControlID("Indian   Company"))
	assert.Equal(t, "column-Product", ControlID("Product"))
}

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"IndianCompany":  "Indian Company",
		"hs_code":        "Hs Code",
		"invoice.date":   "Invoice Date",
		"FOB":            "FOB",
		"HSCode":         "HS Code",
		"unit price INR": "Unit Price INR",
		"quantity2Unit":  "Quantity2 Unit",
		"City":           "City",
	}
	for in, want := range cases {
		assert.Equal(t, want, Label(in), in)
	}
}

func TestNewSelector_PriorityFirstAndPrechecked(t *testing.T) {
	s := NewSelector([]string{"city", "Foreign Company", "Amount", "Product", "Product", " ", "IndianCompany", "Zone"})

	assert.Equal(t,
		[]string{"Foreign Company", "IndianCompany", "Product", "Amount", "city", "Zone"},
		names(s.Columns()))

	for _, c := range s.Columns() {
		assert.Equal(t, c.Priority, s.Checked(c.Name), c.Name)
	}
	assert.Equal(t, 3, s.CheckedCount())
	assert.False(t, s.AllSelected())
}

func TestSelector_SelectAllIsDerived(t *testing.T) {
	s := NewSelector([]string{"Product", "City"})
	require.True(t, s.SelectAllEnabled())
	assert.False(t, s.AllSelected())

	s.Set("City", true)
	assert.True(t, s.AllSelected())

	s.Toggle("Product")
	assert.False(t, s.AllSelected())

	s.SetAll(true)
	assert.True(t, s.AllSelected())
	assert.Equal(t, 2, s.CheckedCount())

	s.SetAll(false)
	assert.False(t, s.AllSelected())
	assert.Zero(t, s.CheckedCount())
	assert.Nil(t, s.Selected())
}

func TestSelector_EmptyDisablesSelectAll(t *testing.T) {
	s := NewSelector(nil)
	assert.False(t, s.SelectAllEnabled())
	assert.False(t, s.AllSelected())
	s.SetAll(true)
	assert.Zero(t, s.CheckedCount())

	var nilSel *Selector
	assert.False(t, nilSel.SelectAllEnabled())
	assert.Nil(t, nilSel.Selected())
}

func TestSelector_ToggleUnknownIgnored(t *testing.T) {
	s := NewSelector([]string{"City"})
	assert.False(t, s.Toggle("Nope"))
	assert.Zero(t, s.CheckedCount())
	assert.True(t, s.Toggle("City"))
	assert.False(t, s.Toggle("City"))
}

func TestSelector_SelectedAppliesAliases(t *testing.T) {
	s := NewSelector([]string{"ForeignCompany", "IndianCompany", "Product", "City"})
	s.Set("City", true)
	assert.Equal(t, []string{"Foreign Company", "Indian Company", "Product", "City"}, s.Selected())
}

func TestSelector_CheckOnlyIDs(t *testing.T) {
	s := NewSelector([]string{"Product", "HS Code", "City"})

	assert.Equal(t, 1, s.CheckOnlyIDs("column-HS-Code", "column-missing"))
	assert.Equal(t, []string{"HS Code"}, s.Selected())

	assert.Zero(t, s.CheckOnlyIDs("column-missing"))
	assert.Equal(t, []string{"HS Code"}, s.Selected(), "no match leaves state untouched")
}

func TestSelector_Filter(t *testing.T) {
	s := NewSelector([]string{"Product", "HS Code", "City", "Country", "Currency"})

	assert.Len(t, s.Filter(""), 5)
	assert.Equal(t, []string{"HS Code"}, names(s.Filter("hs")))
	assert.Equal(t, []string{"City"}, names(s.Filter("cit")))
	assert.Equal(t, []string{"Country", "Currency"}, names(s.Filter("cur")))
	assert.Empty(t, s.Filter("zzz"))
}

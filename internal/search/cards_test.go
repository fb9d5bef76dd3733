package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/format"
)

func TestGroupFor_FirstMatchWins(t *testing.T) {
	cases := map[string]string{
		"Product":        GroupProduct,
		"HS Code":        GroupProduct,
		"Unit Price":     GroupProduct,
		"City":           GroupLocation,
		"Port of Lading": GroupLocation,
		"IndianCompany":  GroupBusiness,
		"Invoice Date":   GroupBusiness,
		"FOB INR":        GroupFinancial,
		"Exchange Rate":  GroupFinancial,
		"Remarks":        GroupOther,
		"Country":        GroupLocation,
		// Contains both "unit" and "rate"; Product Information is checked first.
		"Unit Rate": GroupProduct,
	}
	for column, want := range cases {
		assert.Equal(t, want, GroupFor(column), column)
	}
}

func TestBuildCards(t *testing.T) {
	row := api.Row{
		{Column: "Product", Value: "Acme Steel Pipe"},
		{Column: "IndianCompany", Value: "Acme Exports"},
		{Column: "Foreign Company", Value: "Widget GmbH"},
		{Column: "City", Value: "Pune"},
		{Column: "Rate", Value: "12.5"},
		{Column: "Remarks", Value: "urgent"},
		{Column: "_relevance", Value: "150"},
	}

	cards := BuildCards([]api.Row{row}, []string{"acme"})
	require.Len(t, cards, 1)
	card := cards[0]

	assert.True(t, card.HasTitle)
	assert.Equal(t, "Acme Steel Pipe", card.TitleText())
	assert.Equal(t, format.Segment{Text: "Acme", Match: true}, card.Title[0])

	require.Len(t, card.Companies, 2)
	assert.Equal(t, "Indian Company", card.Companies[0].Label)
	assert.Equal(t, "Acme Exports", format.Plain(card.Companies[0].Parts))
	assert.Equal(t, "Foreign Company", card.Companies[1].Label)

	var groupNames []string
	for _, g := range card.Groups {
		groupNames = append(groupNames, g.Name)
	}
	assert.Equal(t, []string{GroupProduct, GroupLocation, GroupBusiness, GroupFinancial, GroupOther}, groupNames)

	seen := map[string]int{}
	for _, g := range card.Groups {
		for _, f := range g.Fields {
			seen[f.Column]++
		}
	}
	assert.NotContains(t, seen, "_relevance")
	for column, n := range seen {
		assert.Equal(t, 1, n, "column %s appears in %d groups", column, n)
	}
	assert.Len(t, seen, 6)
}

func TestBuildCards_NoProductName(t *testing.T) {
	cards := BuildCards([]api.Row{{{Column: "City", Value: "Pune"}}}, nil)
	require.Len(t, cards, 1)
	assert.False(t, cards[0].HasTitle)
	assert.Equal(t, "No Product Name", cards[0].TitleText())
	assert.Empty(t, cards[0].Companies)
	require.Len(t, cards[0].Groups, 1)
	assert.Equal(t, GroupLocation, cards[0].Groups[0].Name)
}

func TestBuildCards_Empty(t *testing.T) {
	assert.Empty(t, BuildCards(nil, []string{"x"}))
}

package search

import (
	"strings"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/format"
)

// Group names used on result cards.
const (
	GroupProduct   = "Product Information"
	GroupLocation  = "Location Information"
	GroupBusiness  = "Business Information"
	GroupFinancial = "Financial Information"
	GroupOther     = "Other Information"

	noProductName = "No Product Name"
)

// fieldGroups is matched in order; a column lands in the first group with a
// keyword contained in its lowercased name.
var fieldGroups = []struct {
	name     string
	keywords []string
}{
	{GroupProduct, []string{"product", "hs code", "quantity", "unit"}},
	{GroupLocation, []string{"city", "address", "port", "country"}},
	{GroupBusiness, []string{"iec", "cush", "company", "invoice", "date"}},
	{GroupFinancial, []string{"rate", "currency", "fob", "amount"}},
}

// Field is one labelled value on a card.
type Field struct {
	Column string
	Value  string
	Parts  []format.Segment
}

// Group is a titled set of fields.
type Group struct {
	Name   string
	Fields []Field
}

// CompanyLine is a header line such as "Indian Company: Acme".
type CompanyLine struct {
	Label string
	Parts []format.Segment
}

// Card is the presentation of one result row.
type Card struct {
	Title     []format.Segment
	HasTitle  bool
	Companies []CompanyLine
	Groups    []Group
	Row       api.Row
}

// TitleText returns the plain title.
func (c Card) TitleText() string {
	return format.Plain(c.Title)
}

// GroupFor returns the group a column is shown in.
func GroupFor(column string) string {
	lower := strings.ToLower(column)
	for _, g := range fieldGroups {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return g.name
			}
		}
	}
	return GroupOther
}

// BuildCards maps rows to cards with every term highlighted. Columns whose
// names start with an underscore are backend metadata and are skipped.
func BuildCards(rows []api.Row, terms []string) []Card {
	cards := make([]Card, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, buildCard(row, terms))
	}
	return cards
}

func buildCard(row api.Row, terms []string) Card {
	card := Card{Row: row}

	if product, _ := row.Get("Product"); strings.TrimSpace(product) != "" {
		card.Title = format.Highlight(product, terms...)
		card.HasTitle = true
	} else {
		card.Title = []format.Segment{{Text: noProductName}}
	}

	companies := []struct{ label, a, b string }{
		{"Indian Company", "IndianCompany", "Indian Company"},
		{"Foreign Company", "ForeignCompany", "Foreign Company"},
	}
	for _, co := range companies {
		if v := firstValue(row, co.a, co.b); v != "" {
			card.Companies = append(card.Companies, CompanyLine{Label: co.label, Parts: format.Highlight(v, terms...)})
		}
	}

	byName := make(map[string]*Group)
	for _, cell := range row {
		if strings.HasPrefix(cell.Column, "_") {
			continue
		}
		name := GroupFor(cell.Column)
		g, ok := byName[name]
		if !ok {
			g = &Group{Name: name}
			byName[name] = g
		}
		g.Fields = append(g.Fields, Field{
			Column: cell.Column,
			Value:  cell.Value,
			Parts:  format.Highlight(cell.Value, terms...),
		})
	}

	for _, fg := range fieldGroups {
		if g, ok := byName[fg.name]; ok {
			card.Groups = append(card.Groups, *g)
		}
	}
	if g, ok := byName[GroupOther]; ok {
		card.Groups = append(card.Groups, *g)
	}
	return card
}

func firstValue(row api.Row, names ...string) string {
	for _, n := range names {
		if v, ok := row.Get(n); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package sgschool

import (
	"io"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/sells-group/school-finder/internal/model"
)

// mainGroups is the column order of the cut-off cells on the listing page
// and in history tables.
var mainGroups = []model.Group{model.GroupIP, model.GroupPG3, model.GroupPG2, model.GroupPG1}

// Listing is one school row from the listing page.
type Listing struct {
	Name      string
	DetailURL string

	// Cutoffs holds the current year's raw values. Affiliated values use the
	// _Aff keys.
	Cutoffs map[model.ColumnKey]string
}

// Detail is what a school's own page adds to its listing.
type Detail struct {
	Town    string
	Address string

	// History maps a year to the raw cut-off per group.
	History map[int]map[model.Group]string
}

// ParseMainPage extracts the listing table. Affiliated rows and rows with
// no cut-off for year are dropped. Relative detail links are resolved
// against base.
func ParseMainPage(r io.Reader, base *url.URL, year int) ([]Listing, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, eris.Wrap(err, "sgschool: parse listing page")
	}

	table := findTable(doc, "School", "IP")
	if table == nil {
		return nil, eris.New("sgschool: listing table not found")
	}

	var out []Listing
	for _, row := range findAll(table, atom.Tr) {
		cells := dataCells(row)
		if len(cells) < 6 {
			continue
		}

		link := findFirst(cells[1], atom.A)
		href, ok := attr(link, "href")
		if link == nil || !ok {
			continue
		}
		name := text(link)
		if name == "" || strings.Contains(name, "↳") || strings.Contains(name, "Affiliated") {
			continue
		}

		l := Listing{
			Name:      name,
			DetailURL: resolve(base, href),
			Cutoffs:   make(map[model.ColumnKey]string),
		}
		for i, g := range mainGroups {
			value, affiliated := splitCutoff(text(cells[2+i]))
			if value != "" {
				l.Cutoffs[model.ColumnKey{Year: year, Group: g}] = value
			}
			if affiliated != "" && !g.Integrated() {
				l.Cutoffs[model.ColumnKey{Year: year, Group: g, Affiliated: true}] = affiliated
			}
		}
		if !l.hasCurrent(year) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (l Listing) hasCurrent(year int) bool {
	for _, g := range mainGroups {
		if l.Cutoffs[model.ColumnKey{Year: year, Group: g}] != "" {
			return true
		}
	}
	return false
}

// ParseDetailPage extracts the town, the address and the cut-off history.
// Missing pieces are left empty.
func ParseDetailPage(r io.Reader) (Detail, error) {
	d := Detail{History: make(map[int]map[model.Group]string)}

	doc, err := html.Parse(r)
	if err != nil {
		return d, eris.Wrap(err, "sgschool: parse detail page")
	}

	d.Town = labelledValue(doc, "Town")
	d.Address = labelledValue(doc, "Address")

	table := findTable(doc, "Year", "IP")
	if table == nil {
		return d, nil
	}
	for _, row := range findAll(table, atom.Tr) {
		cells := dataCells(row)
		if len(cells) < 5 {
			continue
		}
		year, err := strconv.Atoi(text(cells[0]))
		if err != nil {
			continue
		}
		values := make(map[model.Group]string, len(mainGroups))
		for i, g := range mainGroups {
			if v, _ := splitCutoff(text(cells[1+i])); v != "" {
				values[g] = v
			}
		}
		d.History[year] = values
	}
	return d, nil
}

// splitCutoff separates a cell such as "8 12" into the school's own value
// and the affiliated value. A lone "-" means no value.
func splitCutoff(s string) (value, affiliated string) {
	parts := strings.Fields(s)
	if len(parts) == 0 || parts[0] == "-" {
		return "", ""
	}
	value = parts[0]
	if len(parts) > 1 && parts[1] != "-" {
		affiliated = parts[1]
	}
	return value, affiliated
}

// labelledValue finds a table row whose first cell is label and returns the
// second cell.
func labelledValue(doc *html.Node, label string) string {
	for _, row := range findAll(doc, atom.Tr) {
		var cells []*html.Node
		for c := row.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
				cells = append(cells, c)
			}
		}
		if len(cells) >= 2 && strings.EqualFold(text(cells[0]), label) {
			return text(cells[1])
		}
	}
	return ""
}

// findTable returns the first table whose header cells include every name.
func findTable(doc *html.Node, headers ...string) *html.Node {
	for _, t := range findAll(doc, atom.Table) {
		var got []string
		for _, th := range findAll(t, atom.Th) {
			got = append(got, text(th))
		}
		match := true
		for _, h := range headers {
			if !slices.Contains(got, h) {
				match = false
				break
			}
		}
		if match {
			return t
		}
	}
	return nil
}

func dataCells(row *html.Node) []*html.Node {
	var cells []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Td {
			cells = append(cells, c)
		}
	}
	return cells
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == a {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// text returns the node's text with each text run trimmed and runs joined
// by single spaces.
func text(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func resolve(base *url.URL, href string) string {
	if strings.HasPrefix(href, "http") || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

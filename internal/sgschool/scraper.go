// Package sgschool builds the school dataset from the sgschooling.com
// cut-off listing and each school's detail page.
package sgschool

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/school-finder/internal/dataset"
	"github.com/sells-group/school-finder/internal/model"
)

// Placeholders written for absent values.
const (
	MissingCutoff = "-"
	MissingText   = "N/A"
)

// Defaults for the public site.
const (
	DefaultBaseURL   = "https://sgschooling.com"
	DefaultMainPath  = "/secondary/cop/all"
	DefaultUserAgent = "Mozilla/5.0 (Educational Research Bot)"
)

// School is a fully scraped record.
type School struct {
	Listing
	Town      string
	Address   string
	ScrapedAt time.Time
}

// Getter fetches a page body.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Scraper walks the listing page and then every detail page.
type Scraper struct {
	getter   Getter
	base     *url.URL
	mainPath string
	year     int
	history  []int
	now      func() time.Time
}

// NewScraper creates a Scraper. year is the listing page's year; history
// lists the earlier years read from detail pages.
func NewScraper(g Getter, baseURL, mainPath string, year int, history []int) (*Scraper, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, eris.Errorf("sgschool: invalid base url %q", baseURL)
	}
	if mainPath == "" {
		mainPath = DefaultMainPath
	}
	return &Scraper{
		getter:   g,
		base:     base,
		mainPath: mainPath,
		year:     year,
		history:  append([]int(nil), history...),
		now:      time.Now,
	}, nil
}

// MainURL is the listing page address.
func (s *Scraper) MainURL() string {
	ref, _ := url.Parse(s.mainPath)
	return s.base.ResolveReference(ref).String()
}

// Run scrapes the listing and every detail page. A failed detail page is
// logged and the school is kept with its listing data only.
func (s *Scraper) Run(ctx context.Context) ([]School, error) {
	log := zap.L().With(zap.String("source", s.base.Host))

	mainURL := s.MainURL()
	log.Info("fetching listing page", zap.String("url", mainURL))
	body, err := s.getter.Get(ctx, mainURL)
	if err != nil {
		return nil, eris.Wrap(err, "sgschool: fetch listing page")
	}
	listings, err := ParseMainPage(bytes.NewReader(body), s.base, s.year)
	if err != nil {
		return nil, err
	}
	log.Info("found schools", zap.Int("count", len(listings)))

	out := make([]School, 0, len(listings))
	for i, l := range listings {
		if err := ctx.Err(); err != nil {
			return out, eris.Wrap(err, "sgschool: scrape interrupted")
		}

		sch := School{Listing: l, ScrapedAt: s.now()}
		d, err := s.detail(ctx, l.DetailURL)
		if err != nil {
			log.Warn("detail page failed",
				zap.Int("index", i+1),
				zap.String("school", l.Name),
				zap.Error(err),
			)
			out = append(out, sch)
			continue
		}

		sch.Town, sch.Address = d.Town, d.Address
		for _, year := range s.history {
			for g, v := range d.History[year] {
				sch.Cutoffs[model.ColumnKey{Year: year, Group: g}] = v
			}
		}
		log.Info("scraped school",
			zap.Int("index", i+1),
			zap.Int("total", len(listings)),
			zap.String("school", l.Name),
			zap.String("town", d.Town),
		)
		out = append(out, sch)
	}
	return out, nil
}

func (s *Scraper) detail(ctx context.Context, u string) (Detail, error) {
	body, err := s.getter.Get(ctx, u)
	if err != nil {
		return Detail{}, err
	}
	return ParseDetailPage(bytes.NewReader(body))
}

// Columns returns the dataset header for the given years, current year
// first.
func Columns(year int, history []int) []string {
	cols := []string{dataset.ColName, dataset.ColTown, dataset.ColAddress}
	for _, g := range mainGroups {
		cols = append(cols, model.ColumnKey{Year: year, Group: g}.String())
	}
	for _, g := range mainGroups {
		if !g.Integrated() {
			cols = append(cols, model.ColumnKey{Year: year, Group: g, Affiliated: true}.String())
		}
	}
	for _, y := range history {
		for _, g := range mainGroups {
			cols = append(cols, model.ColumnKey{Year: y, Group: g}.String())
		}
	}
	return append(cols, dataset.ColDetailURL, dataset.ColScrapedAt)
}

// ToTable lays the schools out as a dataset table.
func ToTable(schools []School, year int, history []int) *dataset.Table {
	t := dataset.NewTable(Columns(year, history))
	for _, sch := range schools {
		row := map[string]string{
			dataset.ColName:      sch.Name,
			dataset.ColTown:      orDefault(sch.Town, MissingText),
			dataset.ColAddress:   orDefault(sch.Address, MissingText),
			dataset.ColDetailURL: sch.DetailURL,
			dataset.ColScrapedAt: sch.ScrapedAt.Format(time.RFC3339),
		}
		for _, col := range t.Header() {
			key, err := model.ParseColumnKey(col)
			if err != nil {
				continue
			}
			row[col] = orDefault(sch.Cutoffs[key], MissingCutoff)
		}
		t.AppendRow(row)
	}
	return t
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

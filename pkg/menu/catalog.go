package menu

import (
	_ "embed"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/kotrzina/knue-meals/pkg/extract"
	"github.com/kotrzina/knue-meals/pkg/fetch"
	"gopkg.in/yaml.v3"
)

// Meal slots of the date addressed source.
const (
	SadoBreakfast = "조식"
	SadoLunch     = "중식"
	SadoDinner    = "석식"
)

// Meal slots of the weekday addressed source.
const (
	StaffBreakfast = "아침"
	StaffLunch     = "점심"
	StaffDinner    = "저녁"
)

var (
	SadoMeals  = []string{SadoBreakfast, SadoLunch, SadoDinner}
	StaffMeals = []string{StaffBreakfast, StaffLunch, StaffDinner}
	Weekdays   = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
)

//go:embed sources.yaml
var defaultSources []byte

type sourceFile struct {
	ID        string            `yaml:"id"`
	Label     string            `yaml:"label"`
	URL       string            `yaml:"url"`
	Encodings []string          `yaml:"encodings"`
	Headers   map[string]string `yaml:"headers"`
}

type catalogFile struct {
	Sado struct {
		sourceFile `yaml:",inline"`
		Meals      []struct {
			Name  string   `yaml:"name"`
			XPath []string `yaml:"xpath"`
		} `yaml:"meals"`
	} `yaml:"sado"`

	Staff struct {
		sourceFile `yaml:",inline"`
		Heading    struct {
			Tags     []string `yaml:"tags"`
			Contains []string `yaml:"contains"`
		} `yaml:"heading"`
		TableClass string            `yaml:"table_class"`
		Meals      []string          `yaml:"meals"`
		Days       map[string]string `yaml:"days"`
		EmptyNote  string            `yaml:"empty_note"`
	} `yaml:"staff"`
}

// Source is what every upstream page needs to be fetched and decoded.
type Source struct {
	ID      string
	Label   string
	URL     string
	Header  http.Header
	Decoder *fetch.Decoder
}

// MealSelector ties a meal slot to where its cells live on the page.
type MealSelector struct {
	Name     string
	Selector *extract.Selector
}

// DateSource is a page addressed by calendar date with one table row per slot.
type DateSource struct {
	Source
	Meals []MealSelector
}

// MealNames returns the slot names in page order.
func (s *DateSource) MealNames() []string {
	names := make([]string, len(s.Meals))
	for i, m := range s.Meals {
		names[i] = m.Name
	}
	return names
}

// URLFor adds the year, month and date query parameters to the base URL.
func (s *DateSource) URLFor(date time.Time) (string, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", fmt.Errorf("could not parse source url: %w", err)
	}

	q := u.Query()
	q.Set("year", strconv.Itoa(date.Year()))
	q.Set("month", strconv.Itoa(int(date.Month())))
	q.Set("date", strconv.Itoa(date.Day()))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// WeekdaySource is a single page with one block per weekday, each holding a
// heading and a labeled table.
type WeekdaySource struct {
	Source
	Section   *extract.SectionSpec
	Meals     []string
	Days      map[string]string // weekday token -> block id
	EmptyNote string
}

// Catalog holds every configured source. It is read-only after loading and
// shared between concurrent requests.
type Catalog struct {
	Sado  *DateSource
	Staff *WeekdaySource
}

// DefaultCatalog loads the embedded sources.yaml.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(defaultSources)
}

// LoadCatalog parses and compiles a catalog. Broken selectors, unknown
// encodings or slot names outside the fixed enumerations are rejected here.
func LoadCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("could not parse catalog: %w", err)
	}

	sadoSource, err := newSource(file.Sado.sourceFile)
	if err != nil {
		return nil, fmt.Errorf("invalid sado source: %w", err)
	}
	sado := &DateSource{Source: sadoSource}
	for _, m := range file.Sado.Meals {
		sel, err := extract.NewSelector(m.XPath...)
		if err != nil {
			return nil, fmt.Errorf("invalid selector for %s: %w", m.Name, err)
		}
		sado.Meals = append(sado.Meals, MealSelector{Name: m.Name, Selector: sel})
	}
	if !slices.Equal(sado.MealNames(), SadoMeals) {
		return nil, fmt.Errorf("sado meals must be %v, got %v", SadoMeals, sado.MealNames())
	}

	staffSource, err := newSource(file.Staff.sourceFile)
	if err != nil {
		return nil, fmt.Errorf("invalid staff source: %w", err)
	}
	section, err := extract.NewSectionSpec(file.Staff.Heading.Tags, file.Staff.TableClass, file.Staff.Heading.Contains...)
	if err != nil {
		return nil, fmt.Errorf("invalid staff section: %w", err)
	}
	if !slices.Equal(file.Staff.Meals, StaffMeals) {
		return nil, fmt.Errorf("staff meals must be %v, got %v", StaffMeals, file.Staff.Meals)
	}
	days := make(map[string]string, len(Weekdays))
	for _, day := range Weekdays {
		id := file.Staff.Days[day]
		if id == "" {
			return nil, fmt.Errorf("staff source has no block id for %s", day)
		}
		days[day] = id
	}
	if len(file.Staff.Days) != len(Weekdays) {
		return nil, fmt.Errorf("staff days must be exactly %v", Weekdays)
	}

	return &Catalog{
		Sado: sado,
		Staff: &WeekdaySource{
			Source:    staffSource,
			Section:   section,
			Meals:     slices.Clone(file.Staff.Meals),
			Days:      days,
			EmptyNote: file.Staff.EmptyNote,
		},
	}, nil
}

// WithURLs returns a copy of the catalog pointing at different pages.
// Empty arguments keep the configured URL.
func (c *Catalog) WithURLs(sadoURL, staffURL string) *Catalog {
	sado := *c.Sado
	staff := *c.Staff
	if sadoURL != "" {
		sado.URL = sadoURL
	}
	if staffURL != "" {
		staff.URL = staffURL
	}
	return &Catalog{Sado: &sado, Staff: &staff}
}

// WithUserAgent returns a copy of the catalog sending ua on every fetch.
func (c *Catalog) WithUserAgent(ua string) *Catalog {
	out := c.WithURLs("", "")
	if ua == "" {
		return out
	}
	out.Sado.Header = c.Sado.Header.Clone()
	out.Sado.Header.Set("User-Agent", ua)
	out.Staff.Header = c.Staff.Header.Clone()
	out.Staff.Header.Set("User-Agent", ua)
	return out
}

func newSource(f sourceFile) (Source, error) {
	if f.ID == "" || f.URL == "" {
		return Source{}, fmt.Errorf("id and url are required")
	}
	if _, err := url.Parse(f.URL); err != nil {
		return Source{}, fmt.Errorf("invalid url %q: %w", f.URL, err)
	}

	decoder, err := fetch.NewDecoder(f.Encodings...)
	if err != nil {
		return Source{}, err
	}

	header := http.Header{}
	for k, v := range f.Headers {
		header.Set(k, v)
	}

	return Source{
		ID:      f.ID,
		Label:   f.Label,
		URL:     f.URL,
		Header:  header,
		Decoder: decoder,
	}, nil
}

package services

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"airbnb-dashboard/models"
)

//go:embed views.yaml
var defaultViews []byte

var (
	// ErrUnknownView is returned for a view name the dashboard does not define.
	ErrUnknownView = errors.New("unknown view")
	// ErrUnknownChart is returned for a chart id the view does not define.
	ErrUnknownChart = errors.New("unknown chart")
)

// Operations a chart can run over its filtered rows.
const (
	OpMean        = "mean"
	OpSum         = "sum"
	OpPivot       = "pivot"
	OpOutliers    = "outliers"
	OpCorrelation = "correlation"
	OpBox         = "box"
	OpPoints      = "points"
)

// ChartSpec declares one chart of a view.
type ChartSpec struct {
	ID       string             `yaml:"id" json:"id"`
	Title    string             `yaml:"title" json:"title"`
	Kind     models.ChartKind   `yaml:"kind" json:"kind"`
	Op       string             `yaml:"op" json:"op"`
	Filters  []models.Dimension `yaml:"filters,omitempty" json:"filters,omitempty"`
	Keys     []models.Dimension `yaml:"keys,omitempty" json:"keys,omitempty"`
	Measures []models.Measure   `yaml:"measures,omitempty" json:"measures,omitempty"`
	Labels   map[string]string  `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// View declares a dashboard page: its selectors and charts.
type View struct {
	Name    string             `yaml:"name" json:"name"`
	Title   string             `yaml:"title" json:"title"`
	Filters []models.Dimension `yaml:"filters" json:"filters"`
	Charts  []ChartSpec        `yaml:"charts" json:"charts"`
}

// Chart returns the chart with the given id.
func (v *View) Chart(id string) (*ChartSpec, error) {
	for i := range v.Charts {
		if v.Charts[i].ID == id {
			return &v.Charts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrUnknownChart, v.Name, id)
}

// Dashboard is a validated set of views.
type Dashboard struct {
	views  []View
	byName map[string]int
}

type viewsFile struct {
	Views []View `yaml:"views"`
}

// LoadDashboard reads views from path, or the built-in views when path is
// empty.
func LoadDashboard(path string) (*Dashboard, error) {
	if path == "" {
		return ParseDashboard(defaultViews)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("views: read %q: %w", path, err)
	}
	return ParseDashboard(data)
}

// ParseDashboard decodes and validates a views document.
func ParseDashboard(data []byte) (*Dashboard, error) {
	var f viewsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("views: parse: %w", err)
	}
	if len(f.Views) == 0 {
		return nil, errors.New("views: no views defined")
	}

	d := &Dashboard{views: f.Views, byName: make(map[string]int, len(f.Views))}
	for i := range f.Views {
		v := &f.Views[i]
		if err := validateView(v); err != nil {
			return nil, err
		}
		if _, dup := d.byName[v.Name]; dup {
			return nil, fmt.Errorf("views: duplicate view %q", v.Name)
		}
		d.byName[v.Name] = i
	}
	return d, nil
}

func validateView(v *View) error {
	if v.Name == "" {
		return errors.New("views: view without a name")
	}
	for _, f := range v.Filters {
		if !isFilterField(f) {
			return fmt.Errorf("views: %s: %q is not a filter field", v.Name, f)
		}
	}
	if len(v.Charts) == 0 {
		return fmt.Errorf("views: %s: no charts", v.Name)
	}

	ids := make(map[string]struct{})
	for i := range v.Charts {
		c := &v.Charts[i]
		if c.ID == "" {
			return fmt.Errorf("views: %s: chart %d has no id", v.Name, i)
		}
		if _, dup := ids[c.ID]; dup {
			return fmt.Errorf("views: %s: duplicate chart %q", v.Name, c.ID)
		}
		ids[c.ID] = struct{}{}
		if err := validateChart(v, c); err != nil {
			return fmt.Errorf("views: %s/%s: %w", v.Name, c.ID, err)
		}
	}
	return nil
}

func validateChart(v *View, c *ChartSpec) error {
	for _, f := range c.Filters {
		if !contains(v.Filters, f) {
			return fmt.Errorf("filter %q is not a selector of the view", f)
		}
	}
	for _, k := range c.Keys {
		if !models.ValidDimension(k) {
			return fmt.Errorf("unknown key %q", k)
		}
	}
	for _, m := range c.Measures {
		if !models.ValidMeasure(m) {
			return fmt.Errorf("unknown measure %q", m)
		}
	}

	switch c.Op {
	case OpMean, OpSum:
		if len(c.Measures) == 0 {
			return fmt.Errorf("%s needs at least one measure", c.Op)
		}
	case OpPivot:
		if len(c.Keys) != 2 || len(c.Measures) != 1 {
			return errors.New("pivot needs two keys and one measure")
		}
	case OpBox:
		if len(c.Keys) > 1 || len(c.Measures) != 1 {
			return errors.New("box needs at most one key and one measure")
		}
	case OpCorrelation:
		if len(c.Measures) == 0 {
			c.Measures = append([]models.Measure(nil), DefaultCorrelationMeasures...)
		}
	case OpOutliers, OpPoints:
	default:
		return fmt.Errorf("unknown op %q", c.Op)
	}
	if c.Kind == "" {
		c.Kind = models.KindTable
	}
	return nil
}

// Views returns the views in declaration order.
func (d *Dashboard) Views() []View {
	return d.views
}

// View returns the named view.
func (d *Dashboard) View(name string) (*View, error) {
	i, ok := d.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, name)
	}
	return &d.views[i], nil
}

// Options returns the selector choices of the named view for sel.
func (d *Dashboard) Options(rows []models.Listing, name string, sel models.FilterSelection) ([]Choice, error) {
	v, err := d.View(name)
	if err != nil {
		return nil, err
	}
	return Options(rows, v.Filters, sel), nil
}

// Run filters rows once per chart with the selectors that chart honours and
// computes every chart of the named view. Selector values the view does not
// expose are ignored.
func (d *Dashboard) Run(rows []models.Listing, name string, sel models.FilterSelection) (*models.ViewResult, error) {
	v, err := d.View(name)
	if err != nil {
		return nil, err
	}

	sel = sel.Only(v.Filters)
	res := &models.ViewResult{
		View:      v.Name,
		Title:     v.Title,
		Selection: sel,
		Matched:   len(Filter(rows, sel)),
		Charts:    make([]*models.Chart, 0, len(v.Charts)),
	}
	for i := range v.Charts {
		res.Charts = append(res.Charts, runChart(rows, v, &v.Charts[i], sel))
	}
	return res, nil
}

// RunChart computes a single chart of the named view.
func (d *Dashboard) RunChart(rows []models.Listing, name, chartID string, sel models.FilterSelection) (*models.Chart, error) {
	v, err := d.View(name)
	if err != nil {
		return nil, err
	}
	spec, err := v.Chart(chartID)
	if err != nil {
		return nil, err
	}
	return runChart(rows, v, spec, sel.Only(v.Filters)), nil
}

func runChart(rows []models.Listing, v *View, spec *ChartSpec, sel models.FilterSelection) *models.Chart {
	if len(spec.Filters) > 0 {
		sel = sel.Only(spec.Filters)
	}
	filtered := Filter(rows, sel)

	c := &models.Chart{
		ID:     spec.ID,
		Title:  spec.Title,
		Kind:   spec.Kind,
		Labels: spec.Labels,
		Keys:   spec.Keys,
		Series: spec.Measures,
	}
	switch spec.Op {
	case OpMean:
		c.Rows = MeanBy(filtered, spec.Keys, spec.Measures...)
	case OpSum:
		c.Rows = SumBy(filtered, spec.Keys, spec.Measures...)
	case OpPivot:
		c.Pivot = PivotMean(filtered, spec.Keys[0], spec.Keys[1], spec.Measures[0])
	case OpOutliers:
		c.Series = []models.Measure{models.MeasurePrice}
		c.Outliers = DetectOutliers(filtered)
	case OpCorrelation:
		c.Correlation = Correlate(filtered, spec.Measures)
	case OpBox:
		c.Boxes = BoxBy(filtered, spec.Keys, spec.Measures[0])
	case OpPoints:
		c.Points = Points(filtered)
	}
	return c
}

func isFilterField(d models.Dimension) bool {
	return contains(models.FilterFields, d)
}

func contains(ds []models.Dimension, d models.Dimension) bool {
	for _, x := range ds {
		if x == d {
			return true
		}
	}
	return false
}

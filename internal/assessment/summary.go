package assessment

// ChartKind selects how a summary is meant to be drawn.
type ChartKind string

// Supported chart kinds.
const (
	ChartBar ChartKind = "bar"
	ChartPie ChartKind = "pie"
)

// Valid reports whether k is a supported chart kind.
func (k ChartKind) Valid() bool {
	return k == ChartBar || k == ChartPie
}

// Options configure an Aggregator.
type Options struct {
	ChartKind ChartKind
	// IncludeGuideLines attaches cumulative guides to stacked bar
	// summaries. Pie charts have no axis to draw them on and never get any.
	IncludeGuideLines bool
}

// DefaultOptions returns stacked bars with guide lines.
func DefaultOptions() Options {
	return Options{ChartKind: ChartBar, IncludeGuideLines: true}
}

// Selection is the user's current dropdown state.
type Selection struct {
	Area   Area
	School string // AllSchools or an exact school name
	Branch string // optional; only honored when a school is selected
}

// Summary is everything one dashboard refresh needs.
type Summary struct {
	Selection Selection
	Options   Options

	// Overall covers every school.
	Overall Distribution
	// School is nil when AllSchools is selected.
	School *Distribution
	// Branches breaks the selected school down per branch. When a branch
	// is selected it holds just that branch.
	Branches []BranchDistribution
	// Guides are cumulative checkpoints of Overall, or nil.
	Guides []float64

	// Considered is the number of records in the dataset and Excluded the
	// number dropped while cleaning the selected area.
	Considered int
	Excluded   int
}

// Aggregator runs the clean, label, filter and distribution pipeline.
// It holds no state besides its options and is safe for concurrent use.
type Aggregator struct {
	opts Options
}

// NewAggregator returns an Aggregator. An invalid chart kind falls back to
// ChartBar.
func NewAggregator(opts Options) *Aggregator {
	if !opts.ChartKind.Valid() {
		opts.ChartKind = ChartBar
	}
	return &Aggregator{opts: opts}
}

// Options returns the aggregator configuration.
func (a *Aggregator) Options() Options {
	return a.opts
}

// Summarize computes the summary of sel over ds.
func (a *Aggregator) Summarize(ds Dataset, sel Selection) Summary {
	rows := LabelLevels(Clean(ds, sel.Area))

	s := Summary{
		Selection:  sel,
		Options:    a.opts,
		Overall:    ComputeDistribution(rows),
		Considered: len(ds),
		Excluded:   len(ds) - len(rows),
	}
	if a.opts.IncludeGuideLines && a.opts.ChartKind == ChartBar {
		s.Guides = CumulativeGuides(s.Overall)
	}

	if sel.School == "" || sel.School == AllSchools {
		s.Selection.School = AllSchools
		s.Selection.Branch = ""
		return s
	}

	schoolRows := FilterBySchool(rows, sel.School)
	school := ComputeDistribution(schoolRows)
	s.School = &school

	if sel.Branch != "" {
		s.Branches = []BranchDistribution{{
			Branch:       sel.Branch,
			Distribution: ComputeDistribution(FilterByBranch(schoolRows, sel.Branch)),
		}}
	} else {
		s.Branches = GroupByBranch(schoolRows)
	}
	return s
}

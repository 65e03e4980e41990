package assessment

// Area identifies an assessed subject area.
type Area string

// Subject areas of the assessment.
const (
	AreaReading           Area = "reading"
	AreaScienceLiteracy   Area = "science_literacy"
	AreaMathLiteracy      Area = "math_literacy"
	AreaProblemSolving    Area = "problem_solving"
	AreaFinancialLiteracy Area = "financial_literacy"
)

var areaNames = map[Area]string{
	AreaReading:           "Reading Skills",
	AreaScienceLiteracy:   "Science Literacy",
	AreaMathLiteracy:      "Math Literacy",
	AreaProblemSolving:    "Problem Solving Skills",
	AreaFinancialLiteracy: "Financial Literacy",
}

// AllAreas returns the subject areas in their fixed presentation order.
func AllAreas() []Area {
	return []Area{
		AreaReading,
		AreaScienceLiteracy,
		AreaMathLiteracy,
		AreaProblemSolving,
		AreaFinancialLiteracy,
	}
}

// ParseArea returns the Area named by s.
func ParseArea(s string) (Area, bool) {
	a := Area(s)
	if _, ok := areaNames[a]; !ok {
		return "", false
	}
	return a, true
}

// Valid reports whether a is a known subject area.
func (a Area) Valid() bool {
	_, ok := areaNames[a]
	return ok
}

// DisplayName returns the human readable name of the area.
func (a Area) DisplayName() string {
	if name, ok := areaNames[a]; ok {
		return name
	}
	return string(a)
}

// NotTaken is the raw marker of a student who did not take the assessment.
const NotTaken = "G"

// AllSchools selects every school when passed to FilterBySchool.
const AllSchools = "ALL"

// StudentRecord is one student row of the source spreadsheet.
type StudentRecord struct {
	School string
	Branch string
	// Markers holds the raw cell text per area: an integer score, NotTaken,
	// or anything else a spreadsheet may contain.
	Markers map[Area]string
}

// Marker returns the raw marker for area and whether the record has one.
func (r StudentRecord) Marker(area Area) (string, bool) {
	m, ok := r.Markers[area]
	return m, ok
}

// Dataset is the ordered, read-only collection of loaded student records.
type Dataset []StudentRecord

// Row is a student record reduced to a single subject area.
type Row struct {
	School string
	Branch string
	Score  int
	Level  Level
}

// Rows is the working set of the aggregation pipeline.
type Rows []Row

package assessment

// Level is an ordinal proficiency bucket derived from a 0-4 score.
type Level int

// Levels in display order, lowest first.
const (
	BelowBasic Level = iota
	Basic
	Intermediate
	Advanced
	Proficient
)

// NoLevel marks a row whose score has no level. Such rows are left out of
// distribution totals.
const NoLevel Level = -1

// LevelCount is the number of proficiency levels.
const LevelCount = 5

// MinScore and MaxScore bound the valid score range.
const (
	MinScore = 0
	MaxScore = 4
)

var levelNames = [LevelCount]string{
	BelowBasic:   "Below Basic",
	Basic:        "Basic",
	Intermediate: "Intermediate",
	Advanced:     "Advanced",
	Proficient:   "Proficient",
}

var levelColors = [LevelCount]string{
	BelowBasic:   "#87CEEB",
	Basic:        "#1E4B9E",
	Intermediate: "#F7951D",
	Advanced:     "#7F3F98",
	Proficient:   "#E6007E",
}

// AllLevels returns the levels in display order.
func AllLevels() []Level {
	return []Level{BelowBasic, Basic, Intermediate, Advanced, Proficient}
}

// LevelForScore maps a score to its level. Scores outside [MinScore, MaxScore]
// return NoLevel and false.
func LevelForScore(score int) (Level, bool) {
	if score < MinScore || score > MaxScore {
		return NoLevel, false
	}
	return Level(score), true
}

// Valid reports whether l is one of the five levels.
func (l Level) Valid() bool {
	return l >= BelowBasic && l <= Proficient
}

// String returns the display name of the level.
func (l Level) String() string {
	if !l.Valid() {
		return "Unknown"
	}
	return levelNames[l]
}

// Color returns the fixed display color of the level as a hex string.
func (l Level) Color() string {
	if !l.Valid() {
		return ""
	}
	return levelColors[l]
}

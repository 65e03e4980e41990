package assessment

// Distribution is the share of each level in a set of rows.
type Distribution struct {
	Counts [LevelCount]int
	// Total counts only rows with a valid level.
	Total int
}

// Share is one level's slice of a distribution.
type Share struct {
	Level   Level
	Count   int
	Percent float64
}

// ComputeDistribution counts rows per level. Rows without a level are not
// counted. An empty input gives an all-zero distribution.
func ComputeDistribution(rows Rows) Distribution {
	var d Distribution
	for _, r := range rows {
		if !r.Level.Valid() {
			continue
		}
		d.Counts[r.Level]++
		d.Total++
	}
	return d
}

// Empty reports whether no leveled row contributed to d.
func (d Distribution) Empty() bool {
	return d.Total == 0
}

// Percent returns the percentage of level l, in [0, 100].
func (d Distribution) Percent(l Level) float64 {
	if d.Total == 0 || !l.Valid() {
		return 0
	}
	return float64(d.Counts[l]) * 100 / float64(d.Total)
}

// Shares returns every level's share in display order.
func (d Distribution) Shares() []Share {
	shares := make([]Share, 0, LevelCount)
	for _, l := range AllLevels() {
		shares = append(shares, Share{
			Level:   l,
			Count:   d.Counts[l],
			Percent: d.Percent(l),
		})
	}
	return shares
}

// Sum returns the sum of all percentages: 100 for a non-empty distribution
// up to floating point error, 0 otherwise.
func (d Distribution) Sum() float64 {
	var sum float64
	for _, l := range AllLevels() {
		sum += d.Percent(l)
	}
	return sum
}

// CumulativeGuides returns the running percentage total after each of the
// four lowest levels. The final 100% checkpoint is the top edge of a stacked
// chart and is omitted.
func CumulativeGuides(d Distribution) []float64 {
	guides := make([]float64, 0, LevelCount-1)
	var running float64
	for _, l := range AllLevels()[:LevelCount-1] {
		running += d.Percent(l)
		guides = append(guides, running)
	}
	return guides
}

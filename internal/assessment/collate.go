package assessment

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortNames orders school and branch names the way a Turkish reader expects
// (Ç after C, İ after I, Ş after S). A Collator is not safe for concurrent
// use, so one is built per call.
func sortNames(names []string) {
	collate.New(language.Turkish).SortStrings(names)
}

// Schools returns the distinct school names of ds in collation order.
func Schools(ds Dataset) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, rec := range ds {
		if _, ok := seen[rec.School]; ok {
			continue
		}
		seen[rec.School] = struct{}{}
		names = append(names, rec.School)
	}
	sortNames(names)
	return names
}

// Branches returns the distinct branch names of school in collation order.
// An unknown school has no branches.
func Branches(ds Dataset, school string) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, rec := range ds {
		if rec.School != school {
			continue
		}
		if _, ok := seen[rec.Branch]; ok {
			continue
		}
		seen[rec.Branch] = struct{}{}
		names = append(names, rec.Branch)
	}
	sortNames(names)
	return names
}

// BranchDistribution is the distribution of a single branch.
type BranchDistribution struct {
	Branch       string
	Distribution Distribution
}

// GroupByBranch computes one distribution per distinct branch in rows,
// ordered by branch name.
func GroupByBranch(rows Rows) []BranchDistribution {
	groups := make(map[string]Rows)
	names := make([]string, 0)
	for _, r := range rows {
		if _, ok := groups[r.Branch]; !ok {
			names = append(names, r.Branch)
		}
		groups[r.Branch] = append(groups[r.Branch], r)
	}
	sortNames(names)

	out := make([]BranchDistribution, 0, len(names))
	for _, name := range names {
		out = append(out, BranchDistribution{
			Branch:       name,
			Distribution: ComputeDistribution(groups[name]),
		})
	}
	return out
}

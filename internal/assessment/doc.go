// Package assessment turns student assessment results into proficiency level
// distributions.
//
// A Dataset holds one StudentRecord per student with the raw score marker of
// each subject area. For a given area the pipeline is:
//
//	rows := assessment.LabelLevels(assessment.Clean(ds, assessment.AreaReading))
//	school := assessment.FilterBySchool(rows, "Atatürk İlkokulu")
//	dist := assessment.ComputeDistribution(school)
//	guides := assessment.CumulativeGuides(dist)
//
// Every function is pure: inputs are never modified, and malformed rows are
// dropped instead of failing the computation. A Dataset is read-only once
// loaded, so concurrent readers need no locking.
package assessment

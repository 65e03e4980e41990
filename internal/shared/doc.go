// Package shared holds helpers used across the dashboard packages that do not
// belong to any single domain or layer.
//
// The testutil subpackage provides:
//
//	- a buffered slog handler with assertions on captured records
//	- a sample student dataset with known per-level counts
//	- a helper that writes that dataset (or any rows) to an .xlsx workbook
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteSampleWorkbook(t)
//	    ...
//	    testutil.AssertNoErrors(t, logs)
//	}
package shared

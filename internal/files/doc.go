// Package files locates assessment workbooks on disk.
//
// A configured dataset path may name a workbook directly or a directory of
// exported reports; in the latter case the most recently modified workbook
// is used. Excel lock files ("~$name.xlsx") are ignored.
package files

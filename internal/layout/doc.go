// Package layout locates and checks the input files of a benchmark project.
//
// A project directory holds a table list (one table name per line), a data
// directory with one CSV file per listed table, and a DDL script. Check
// verifies all of them before any database work starts and reports every
// missing CSV file at once.
package layout

// Package bulk issues the SQL of a load run on a single dedicated session:
// schema creation, the DDL script, per-table CSV transfer through COPY, and
// the integrity repair that follows a bulk load.
//
// Two transfer actions exist. Import splits a CSV file into batches of
// benchload.ImportCommitCount records and commits each batch on its own,
// with triggers and constraints active. Load replaces a table's contents in
// one transaction with triggers disabled and foreign keys re-declared
// NOT VALID, which leaves the table pending integrity until Repair runs.
package bulk

// Package ledger persists per-run item outcomes in SQLite.
//
// Each pipeline run gets a UUID; every item the run touches (an audio file
// in generation, an archive or folder in normalization) gets one row whose
// status advances as the item moves through the stages. The ledger is
// written best-effort — a ledger failure never fails an item — and read by
// the status command and the end-of-run summary.
package ledger

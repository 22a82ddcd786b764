// Package core defines the shared contracts of the ingestion pipeline:
// the canonical film record produced by aggregation, the uniform
// extraction result every source reports, and the declarative
// validation constraints applied before a record is accepted.
package core

// Package cratedocs turns a Rust crate's published documentation into
// vector embeddings and keeps them in durable storage for semantic
// retrieval.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, postgres/, langchaingo/).
package cratedocs

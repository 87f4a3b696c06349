// Package update provides small helpers for describing what a staged
// update archive would do to an installed version.
//
// It intentionally performs no downloads, signature verification, or
// extraction: those live in the internal applier and fetcher. This package
// only compares version strings and phrases the outcome for status output,
// so it is safe to reuse from any tooling around the updater.
//
// Version model
//   - Semver-like strings, with a leading "v" tolerated ("1.2.73", "v1.3.0").
//   - Non-semver or empty versions are treated as non-comparable and default
//     to proceeding; the applier's signature check is the real gate.
package update

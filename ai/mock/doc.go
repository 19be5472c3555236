// Package mock provides deterministic test doubles for the ai interfaces.
//
// The doubles generate stable pseudo-random unit vectors from input hashes
// so similarity math behaves consistently across test runs, and expose
// function fields for injecting custom behavior per test.
package mock

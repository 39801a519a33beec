// Package thetadup implements a theta sketch with duplicates and deletions:
// a probabilistic cardinality estimator that tracks per-element multiplicity
// so that, unlike a classical theta sketch, elements can be removed as well
// as inserted.
//
// A sketch starts life as an *UpdateSketch built through Builder. Updating
// it with typed values (UpdateUint64, UpdateString, ...) and removing values
// (RemoveUint64, RemoveString, ...) maintains an open-addressed hash table of
// (hash, multiplicity) pairs under a shrinking theta cutoff. Compact converts
// an update sketch into an immutable, optionally ordered snapshot suitable
// for serialization or for feeding Union, Intersection, and ANotB.
package thetadup

// Package appraiser provides built-in appraisers for retention sets.
//
//   - Func adapts a plain function.
//   - Coverage wants candidates that cover elements nobody retained covers yet.
//   - Quota pushes back on classes that already hold enough retained items.
//   - Expression judges candidates with a CEL expression over their attributes.
//
// Coverage and Quota are stateful: they implement retention.Observer and
// learn the composition of the set from its notifications. A stateful
// appraiser is bound to exactly one set.
package appraiser

// Package cloner projects the labeled boxes of a source document image onto a
// second image of the same template.
//
// # Algorithm
//
// Every relation box is cloned independently:
//
//  1. Anchor discovery: exactly one static box must overlap the relation.
//  2. Anchor localization: the static box is cropped from the source image
//     and located in the target. The pair (source, target) is the relation's
//     Anchor; every other box of the relation moves by the same translation.
//  3. Repeating group: a variable-many box lying below the anchor is moved
//     and its bottom edge is rediscovered in the target, first from the next
//     static box underneath it, then from the next variable-one box, and
//     finally from a fixed slack. The relation box grows to the same edge.
//  4. Single fields: every overlapping variable-one box is moved.
//
// The orchestrator concatenates the per-relation output in relation order and
// drops near-duplicate boxes per category.
//
// # Errors
//
// Two anchors or two repeating groups in one relation make the labeling
// ambiguous. Clone reports this as an *AmbiguityError and aborts, unless
// Options.OnAmbiguity is PolicySkip. A relation without an anchor, or whose
// anchor cannot be found in the target, is skipped and listed in
// Result.Skipped.
package cloner

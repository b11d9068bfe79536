// Package text provides parsers over strings built on package combo.
//
// The cursor of a text State is a byte offset into the source string.
// Literal and pattern matchers report failures with messages of the form
//
//	match: Tried to match '<expected>', but got '<actual>' @ index <i>
//
// where actual is the same-length slice of input for literals and a
// 20-character snippet for patterns. Letters, Digits, Spaces and EOF are
// ready-made primitives; the combinators of package combo are re-exported
// with string-typed signatures.
package text

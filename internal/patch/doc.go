// Package patch applies structural edits to a specification without
// mutating it. A patch locates a node by a short path (section, name) and
// supplies a replacement value; the result is a new Specification sharing
// every untouched branch with the input.
//
// Only the merge operation has defined semantics. The replace and delete
// operations exist in the wire shape for forward compatibility and are
// rejected until a concrete contract is specified for them.
package patch

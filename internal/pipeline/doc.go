// Package pipeline implements the asset-inlining rewrite of markdown source.
//
// The rewrite runs in four stages over a single document:
//   - Scan finds markdown image references in source order
//   - Registry maps each reference's file extension to a Handler
//   - AssetEncoder and DiagramRenderer resolve references into data URIs
//   - Rewriter substitutes resolved references back into the text
//
// Converting the rewritten markdown into HTML or another target format is
// handled by the root mdembed package. This package never parses markdown
// into an AST: references are found lexically and substituted in place.
package pipeline

package pipeline

import (
	"iter"
	"regexp"
)

// imagePattern matches ![label](target) and ![label](target "title").
// The target runs up to the first unescaped ")" or the whitespace that
// precedes a title. Backslash escapes are kept verbatim in the target.
var imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(((?:\\.|[^)\s\\])+)(?:\s+"([^"]*)")?\s*\)`)

// Reference is one image mention discovered in markdown source.
// Offsets are byte positions in the text passed to Scan.
type Reference struct {
	Label       string
	Target      string
	Title       string
	Start       int // start of "![" in the source
	End         int // end of the closing ")"
	TargetStart int
	TargetEnd   int
}

// Scan returns the image references in content, in source order.
// Matching is lexical and lazy: each step of the iteration looks for the
// next match after the previous one. Targets are neither deduplicated nor
// resolved.
func Scan(content string) iter.Seq[Reference] {
	return func(yield func(Reference) bool) {
		offset := 0
		for offset <= len(content) {
			loc := imagePattern.FindStringSubmatchIndex(content[offset:])
			if loc == nil {
				return
			}

			ref := Reference{
				Label:       content[offset+loc[2] : offset+loc[3]],
				Target:      content[offset+loc[4] : offset+loc[5]],
				Start:       offset + loc[0],
				End:         offset + loc[1],
				TargetStart: offset + loc[4],
				TargetEnd:   offset + loc[5],
			}
			if loc[6] >= 0 {
				ref.Title = content[offset+loc[6] : offset+loc[7]]
			}

			if !yield(ref) {
				return
			}
			offset = ref.End
		}
	}
}

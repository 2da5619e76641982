// Package mdembed converts Markdown documents into self-contained rendered
// documents by inlining local images and draw.io diagrams as data URIs.
//
// # Quick Start
//
// Create a converter, convert a file, and close when done:
//
//	conv, err := mdembed.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.ConvertFile(ctx, mdembed.RunConfig{
//	    InputPath: "docs/guide.md",
//	    Format:    "html",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.OutputPath) // docs/guide_html/guide.html
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Image references are scanned from the raw Markdown text
//  2. Each reference is classified by file extension (png, jpg, drawio, py)
//  3. Local images are base64 encoded; diagrams are exported to PNG first
//  4. The rewritten Markdown is converted by pandoc or the builtin engine
//
// Per-asset problems (a missing file, a failed diagram export) never abort
// a conversion: the reference is left as written and reported in
// Result.Report. Converter failures are fatal and leave no output file.
//
// # Engines
//
// EnginePandoc runs the pandoc executable and supports every pandoc output
// format. EngineBuiltin uses Goldmark and supports html, html5 and pdf (the
// latter through headless Chrome). EngineAuto, the default, prefers pandoc
// and falls back to the builtin engine when pandoc cannot be located.
//
//	conv, err := mdembed.NewConverter(
//	    mdembed.WithEngine(mdembed.EngineBuiltin),
//	    mdembed.WithTimeout(2 * time.Minute),
//	)
package mdembed

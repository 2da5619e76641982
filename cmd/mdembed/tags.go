package main

import "github.com/fatih/color"

// Status tags. Colors are dropped automatically when the output is not a
// terminal or NO_COLOR is set.
var (
	okPrinter    = color.New(color.FgGreen, color.Bold)
	warnPrinter  = color.New(color.FgYellow, color.Bold)
	errorPrinter = color.New(color.FgRed, color.Bold)
)

func okTag() string    { return okPrinter.Sprint("[OK]") }
func warnTag() string  { return warnPrinter.Sprint("[WARN]") }
func errorTag() string { return errorPrinter.Sprint("[ERROR]") }

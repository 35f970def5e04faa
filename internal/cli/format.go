package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/danieljhkim/docmerge/internal/engine"
	"github.com/danieljhkim/docmerge/internal/locator"
)

var (
	// fatih/color disables itself when stdout is not a TTY
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	valueColor   = color.New(color.FgHiBlack)
	dimColor     = color.New(color.FgHiBlack)
)

// PrintSection prints a section header
func PrintSection(w io.Writer, title string) {
	_, _ = fmt.Fprintln(w)
	_, _ = headerColor.Fprintf(w, "▸ %s\n", title)
	_, _ = fmt.Fprintln(w)
}

// PrintSuccess prints a success message with a checkmark
func PrintSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

// PrintWarning prints a warning message with a warning symbol
func PrintWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", msg)
}

// PrintError prints an error message
func PrintError(w io.Writer, msg string) {
	_, _ = errorColor.Fprintf(w, "✗ %s\n", msg)
}

// PrintInfo prints an informational message
func PrintInfo(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, msg)
}

// PrintLabelValue prints a label-value pair with proper formatting
func PrintLabelValue(w io.Writer, label, value string) {
	_, _ = labelColor.Fprintf(w, "  %s: ", label)
	_, _ = valueColor.Fprintln(w, value)
}

// PrintLabelValueWithColor prints a label-value pair with a custom value color
func PrintLabelValueWithColor(w io.Writer, label, value string, valueClr *color.Color) {
	_, _ = labelColor.Fprintf(w, "  %s: ", label)
	_, _ = valueClr.Fprintln(w, value)
}

// PrintTable prints a simple column table
func PrintTable(w io.Writer, headers []string, rows [][]string) {
	if len(headers) == 0 || len(rows) == 0 {
		return
	}

	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	_, _ = fmt.Fprint(w, "  ")
	for i, header := range headers {
		if i > 0 {
			_, _ = fmt.Fprint(w, "  ")
		}
		_, _ = headerColor.Fprintf(w, "%-*s", colWidths[i], header)
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprint(w, "  ")
	for i, width := range colWidths {
		if i > 0 {
			_, _ = fmt.Fprint(w, "  ")
		}
		_, _ = fmt.Fprint(w, strings.Repeat("-", width))
	}
	_, _ = fmt.Fprintln(w)

	for _, row := range rows {
		_, _ = fmt.Fprint(w, "  ")
		for i, cell := range row {
			if i >= len(colWidths) {
				break
			}
			if i > 0 {
				_, _ = fmt.Fprint(w, "  ")
			}
			_, _ = valueColor.Fprintf(w, "%-*s", colWidths[i], cell)
		}
		_, _ = fmt.Fprintln(w)
	}
}

// PrintEmptyState prints a message when there's no data to show
func PrintEmptyState(w io.Writer, msg string) {
	_, _ = dimColor.Fprintf(w, "  %s\n", msg)
}

// PrintCount prints a count with proper formatting
func PrintCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

func statusColor(s engine.Status) *color.Color {
	switch s {
	case engine.StatusSuccess:
		return successColor
	case engine.StatusBatchFailure, engine.StatusNotFound:
		return errorColor
	default:
		return warningColor
	}
}

func locateColor(s locator.Status) *color.Color {
	switch s {
	case locator.StatusResolved:
		return successColor
	case locator.StatusAmbiguous:
		return warningColor
	default:
		return errorColor
	}
}

// printWarnings lists non-fatal conditions.
func printWarnings(w io.Writer, warnings []engine.Warning) {
	for _, warn := range warnings {
		msg := warn.Message
		if warn.AnnotationID != "" && !strings.Contains(msg, warn.AnnotationID) {
			msg = fmt.Sprintf("%s: %s", warn.AnnotationID, msg)
		}
		PrintWarning(w, msg)
	}
}

// printMutation renders an insert or replace outcome.
func printMutation(w io.Writer, res *engine.MutationResult, showDiff bool) {
	_, _ = statusColor(res.Status).Fprintf(w, "[%s] ", res.Status)
	_, _ = fmt.Fprintln(w, res.Message)

	if res.Point != nil && len(res.Point.AffectedIDs) > 0 {
		PrintLabelValue(w, "Affected", strings.Join(res.Point.AffectedIDs, ", "))
	}
	if res.Point != nil && len(res.Point.Options) > 0 {
		PrintLabelValue(w, "Options", strings.Join(res.Point.Options, ", "))
	}
	if res.Plan != nil {
		ops := make([]string, len(res.Plan.Ops))
		for i, op := range res.Plan.Ops {
			ops[i] = op.String()
		}
		PrintLabelValue(w, "Ops", strings.Join(ops, "; "))
	}
	if res.Receipt != nil {
		PrintLabelValue(w, "Batch", res.Receipt.BatchID)
		PrintLabelValue(w, "Revision", res.Receipt.Revision)
	}
	if res.SourceAnnotation != nil {
		PrintLabelValue(w, "Source annotation", res.SourceAnnotation.ID)
	}
	printWarnings(w, res.Warnings)

	if showDiff && res.Diff != "" {
		_, _ = fmt.Fprintln(w)
		printUnifiedDiff(w, res.Diff)
	}
}

func printUnifiedDiff(w io.Writer, diffText string) {
	lines := strings.Split(diffText, "\n")
	for i, line := range lines {
		if i == len(lines)-1 && line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "+++ "),
			strings.HasPrefix(line, "--- "):
			_, _ = dimColor.Fprintf(w, "  %s\n", line)
		case strings.HasPrefix(line, "@@"):
			_, _ = infoColor.Fprintf(w, "  %s\n", line)
		case strings.HasPrefix(line, "+"):
			_, _ = successColor.Fprintf(w, "  %s\n", line)
		case strings.HasPrefix(line, "-"):
			_, _ = errorColor.Fprintf(w, "  %s\n", line)
		default:
			_, _ = fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/docmerge/internal/engine"
	"github.com/danieljhkim/docmerge/internal/planner"
	"github.com/danieljhkim/docmerge/internal/sequencer"
	"github.com/danieljhkim/docmerge/internal/textbuf"
)

func newLocateCmd(g *globalFlags) *cobra.Command {
	var (
		occurrences     []string
		includeResolved bool
	)

	cmd := &cobra.Command{
		Use:   "locate <document>",
		Short: "Resolve every comment to its text range",
		Long: `Resolve each comment's anchor text against the current document body.

A comment whose text occurs more than once is reported as ambiguous with
all candidate offsets. Pick one with --occurrence <id>=<n> (0-based).`,
		Example: `  docmerge locate notes
  docmerge locate notes --occurrence c7=1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseOccurrences(occurrences)
			if err != nil {
				return err
			}

			return withApp(cmd, g, func(a *app) error {
				res, err := a.engine().Locate(cmd.Context(), engine.LocateRequest{
					DocumentID:      args[0],
					Overrides:       overrides,
					IncludeResolved: boolSetting(cmd, "include-resolved", includeResolved, a.settings.Merge.IncludeResolved),
				})
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if g.json {
					return outputJSON(w, res)
				}

				PrintSection(w, fmt.Sprintf("%s @ %s", res.DocumentID, res.Revision))
				if len(res.Annotations) == 0 {
					PrintEmptyState(w, "No anchored comments")
				}
				for _, st := range res.Annotations {
					_, _ = locateColor(st.Status).Fprintf(w, "  %-9s ", st.Status)
					_, _ = labelColor.Fprintf(w, "%s", st.ID)
					_, _ = valueColor.Fprintf(w, "  %q", textbuf.Truncate(st.AnchorText, 40))
					switch {
					case st.Range != nil:
						_, _ = fmt.Fprintf(w, "  %s", st.Range)
						if st.Section != "" {
							_, _ = dimColor.Fprintf(w, "  in %q", st.Section)
						}
					case len(st.Matches) > 0:
						_, _ = fmt.Fprintf(w, "  at %s", joinOffsets(st.Matches))
					}
					_, _ = fmt.Fprintln(w)
				}
				if res.Skipped > 0 {
					PrintEmptyState(w, fmt.Sprintf("%s not located (document-level, orphaned or resolved)",
						PrintCount(res.Skipped, "comment", "comments")))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&occurrences, "occurrence", nil, "Pick an occurrence for an ambiguous comment, as id=n")
	cmd.Flags().BoolVar(&includeResolved, "include-resolved", false, "Also locate resolved comments")
	return cmd
}

func newInsertCmd(g *globalFlags) *cobra.Command {
	var (
		file             string
		section          string
		offset           int
		mode             string
		target           string
		side             string
		source           string
		attribution      bool
		sourceAnnotation bool
		author           string
		occurrences      []string
		includeResolved  bool
		requireRevision  bool
		dryRun           bool
		showDiff         bool
	)

	cmd := &cobra.Command{
		Use:   "insert <document> [content]",
		Short: "Merge new content without splitting any comment",
		Long: `Insert content at the end of a section (or at an offset, or at the end
of the document) without cutting through any commented text.

Modes:
  safe    move the insertion past any comment it would split (default)
  ask     report the affected comments and change nothing
  update  replace the text of --target, keeping the comment attached`,
		Example: `  docmerge insert notes "Ship the beta" --section Plan --source "standup 03/02"
  docmerge insert notes --file update.md --offset 120 --dry-run
  cat update.md | docmerge insert notes --file -`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(args[1:], file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			overrides, err := parseOccurrences(occurrences)
			if err != nil {
				return err
			}

			return withApp(cmd, g, func(a *app) error {
				merge := a.settings.Merge
				anchorSide, err := sequencer.ParseAnchorSide(stringSetting(cmd, "side", side, merge.AnchorSide))
				if err != nil {
					return err
				}

				req := engine.InsertRequest{
					DocumentID:       args[0],
					Content:          content,
					Section:          section,
					Mode:             planner.Mode(stringSetting(cmd, "mode", mode, merge.Mode)),
					TargetID:         target,
					Side:             anchorSide,
					Source:           source,
					Attribution:      boolSetting(cmd, "attribution", attribution, merge.Attribution),
					SourceAnnotation: boolSetting(cmd, "source-annotation", sourceAnnotation, merge.SourceAnnotation),
					Author:           author,
					Overrides:        overrides,
					IncludeResolved:  boolSetting(cmd, "include-resolved", includeResolved, merge.IncludeResolved),
					RequireRevision:  boolSetting(cmd, "require-revision", requireRevision, merge.RequireRevision),
					DryRun:           dryRun,
				}
				if cmd.Flags().Changed("offset") {
					req.Offset = &offset
				}
				if req.Mode == planner.ModeUpdate && target == "" {
					return fmt.Errorf("--mode update needs --target <comment-id>")
				}

				res, err := a.engine().Insert(cmd.Context(), req)
				return reportMutation(cmd, g, res, err, showDiff || dryRun)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "Read content from a file (- for stdin)")
	f.StringVarP(&section, "section", "s", "", "Insert at the end of the section whose heading contains this text")
	f.IntVar(&offset, "offset", 0, "Preferred offset in UTF-16 code units (overrides --section)")
	f.StringVarP(&mode, "mode", "m", "", "Planning mode: safe, ask or update (default from config)")
	f.StringVar(&target, "target", "", "Comment whose text is replaced in update mode")
	f.StringVar(&side, "side", "", "Anchor side for update mode: start, end or middle")
	f.StringVar(&source, "source", "", "Where the content came from")
	f.BoolVar(&attribution, "attribution", false, "Append \" (from: <source>)\" after the content")
	f.BoolVar(&sourceAnnotation, "source-annotation", false, "Add an \"Added from <source>\" comment on the new text")
	f.StringVar(&author, "author", "", "Author of the source comment")
	f.StringArrayVar(&occurrences, "occurrence", nil, "Pick an occurrence for an ambiguous comment, as id=n")
	f.BoolVar(&includeResolved, "include-resolved", false, "Also protect resolved comments")
	f.BoolVar(&requireRevision, "require-revision", false, "Fail if the document changed since it was read")
	f.BoolVar(&dryRun, "dry-run", false, "Plan and preview without changing the document")
	f.BoolVar(&showDiff, "diff", false, "Print a unified diff of the change")
	return cmd
}

func newReplaceCmd(g *globalFlags) *cobra.Command {
	var (
		side            string
		occurrence      int
		allowOrphan     bool
		includeResolved bool
		requireRevision bool
		dryRun          bool
		showDiff        bool
	)

	cmd := &cobra.Command{
		Use:   "replace <document> <comment-id> <replacement>",
		Short: "Replace a comment's text and keep the comment attached",
		Long: `Replace the text a comment is anchored to. The new text is inserted
inside the old range before the old text is removed, so the comment moves
onto the replacement instead of being dropped.

An empty replacement orphans the comment and needs --allow-orphan.`,
		Example: `  docmerge replace notes c2 "Monday"
  docmerge replace notes c7 "the other fox" --occurrence 1 --side end`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app) error {
				anchorSide, err := sequencer.ParseAnchorSide(stringSetting(cmd, "side", side, a.settings.Merge.AnchorSide))
				if err != nil {
					return err
				}

				req := engine.ReplaceRequest{
					DocumentID:      args[0],
					AnnotationID:    args[1],
					Replacement:     args[2],
					Side:            anchorSide,
					AllowOrphan:     allowOrphan,
					IncludeResolved: boolSetting(cmd, "include-resolved", includeResolved, a.settings.Merge.IncludeResolved),
					RequireRevision: boolSetting(cmd, "require-revision", requireRevision, a.settings.Merge.RequireRevision),
					DryRun:          dryRun,
				}
				if cmd.Flags().Changed("occurrence") {
					req.Occurrence = &occurrence
				}

				res, err := a.engine().Replace(cmd.Context(), req)
				return reportMutation(cmd, g, res, err, showDiff || dryRun)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&side, "side", "", "Anchor side: start, end or middle (default from config)")
	f.IntVar(&occurrence, "occurrence", 0, "Pick an occurrence when the comment's text repeats (0-based)")
	f.BoolVar(&allowOrphan, "allow-orphan", false, "Allow an empty replacement that orphans the comment")
	f.BoolVar(&includeResolved, "include-resolved", false, "Allow targeting a resolved comment")
	f.BoolVar(&requireRevision, "require-revision", false, "Fail if the document changed since it was read")
	f.BoolVar(&dryRun, "dry-run", false, "Plan and preview without changing the document")
	f.BoolVar(&showDiff, "diff", false, "Print a unified diff of the change")
	return cmd
}

// reportMutation prints a result, even a failed one, and passes err on.
func reportMutation(cmd *cobra.Command, g *globalFlags, res *engine.MutationResult, err error, showDiff bool) error {
	w := cmd.OutOrStdout()
	if res == nil {
		return err
	}
	if g.json {
		if jerr := outputJSON(w, res); jerr != nil {
			return jerr
		}
		return err
	}
	printMutation(w, res, showDiff)
	return err
}

func joinOffsets(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}

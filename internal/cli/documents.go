package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/docmerge/internal/engine"
)

func newImportCmd(g *globalFlags) *cobra.Command {
	var (
		overwrite bool
		id        string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a document from a JSON or YAML file",
		Long: `Import a document with its annotations into the store.

Annotations are anchored at the first occurrence of their anchor text.
An annotation whose text does not occur is stored orphaned. Use "-" to
read JSON from stdin.`,
		Example: `  docmerge import notes.json
  docmerge import notes.yaml --id weekly --overwrite`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if id != "" {
				doc.ID = id
			}

			return withApp(cmd, g, func(a *app) error {
				info, err := a.engine().Import(cmd.Context(), engine.ImportRequest{
					Document:  doc,
					Overwrite: overwrite,
				})
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if g.json {
					return outputJSON(w, info)
				}
				PrintSuccess(w, fmt.Sprintf("Imported %s (%s, %s)",
					info.ID, PrintCount(info.Length, "code unit", "code units"),
					PrintCount(info.Annotations, "annotation", "annotations")))
				PrintLabelValue(w, "Revision", info.Revision)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing document with the same id")
	cmd.Flags().StringVar(&id, "id", "", "Store under this id instead of the one in the file")
	return cmd
}

func newListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app) error {
				infos, err := a.engine().List(cmd.Context())
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if g.json {
					return outputJSON(w, infos)
				}
				if len(infos) == 0 {
					PrintEmptyState(w, "No documents. Use 'docmerge import <file>' to add one.")
					return nil
				}

				rows := make([][]string, 0, len(infos))
				for _, info := range infos {
					rows = append(rows, []string{
						info.ID,
						info.Title,
						strconv.Itoa(info.Length),
						strconv.Itoa(info.Annotations),
						info.Revision,
						info.UpdatedAt.Format("2006-01-02 15:04"),
					})
				}
				PrintTable(w, []string{"ID", "TITLE", "LENGTH", "ANNOTATIONS", "REVISION", "UPDATED"}, rows)
				return nil
			})
		},
	}
}

func newShowCmd(g *globalFlags) *cobra.Command {
	var (
		includeResolved bool
		showBody        bool
	)

	cmd := &cobra.Command{
		Use:   "show <document>",
		Short: "Show a document's sections and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app) error {
				res, err := a.engine().Show(cmd.Context(), engine.ShowRequest{
					DocumentID:      args[0],
					IncludeResolved: boolSetting(cmd, "include-resolved", includeResolved, a.settings.Merge.IncludeResolved),
				})
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if g.json {
					return outputJSON(w, res)
				}

				doc := res.Document
				title := doc.ID
				if doc.Title != "" {
					title = fmt.Sprintf("%s (%s)", doc.Title, doc.ID)
				}
				PrintSection(w, title)
				PrintLabelValue(w, "Revision", doc.Revision)
				PrintLabelValue(w, "Updated", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

				if len(res.Sections) > 0 {
					PrintSection(w, "Sections")
					for _, s := range res.Sections {
						_, _ = infoColor.Fprintf(w, "  %s%s", indent(s.Level), s.Heading)
						_, _ = dimColor.Fprintf(w, "  [%d,%d)\n", s.Start, s.End)
					}
				}

				if showBody {
					PrintSection(w, "Body")
					PrintInfo(w, doc.Body)
				}

				PrintSection(w, "Comments")
				PrintInfo(w, res.Summary)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&includeResolved, "include-resolved", false, "Include resolved comments")
	cmd.Flags().BoolVar(&showBody, "body", false, "Print the document body")
	return cmd
}

func newRemoveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <document>",
		Aliases: []string{"delete"},
		Short:   "Delete a stored document",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app) error {
				if err := a.engine().Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if g.json {
					return outputJSON(w, map[string]string{"deleted": args[0]})
				}
				PrintSuccess(w, fmt.Sprintf("Deleted %s", args[0]))
				return nil
			})
		},
	}
}

func indent(level int) string {
	if level <= 1 {
		return ""
	}
	return strings.Repeat("  ", level-1)
}

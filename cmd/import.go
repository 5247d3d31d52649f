package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"user-import/core/reconcile"
	"user-import/feature/userimport"
	"user-import/feature/userimport/models"
	"user-import/feature/userimport/parser"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the import command
	importGroup         string
	importResolver      string
	importFormat        string
	importFile          string
	importObject        string
	importDelimiter     string
	importQuoteChar     string
	importColumnMapping string
	importSkipHeader    bool
	importEncoding      string
	importDryRun        bool
	importYes           bool
)

// importCmd imports a snapshot file into a resolver.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a passwd or csv snapshot into a resolver",
	Long: `Import a user snapshot into the resolver identified by --group and --resolver.

The file replaces the resolver's user set: users missing from the file are deleted.
A plan is always computed first; deletions must be confirmed unless --yes is given.

Examples:
  # Preview only
  user-import import --group g1 --resolver corp --file users.csv \
    --column-mapping '{"username":0,"userid":1}' --dry-run

  # Import a passwd file without prompting
  user-import import --group g1 --resolver unix --format password --file /etc/passwd --yes

  # Re-import an archived snapshot
  user-import import --group g1 --resolver corp --format csv \
    --object imports/g1/corp/20260101T120000Z-abc.csv --column-mapping '{"username":0,"userid":1}'`,
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&importGroup, "group", "", "Group id of the resolver (required)")
	f.StringVar(&importResolver, "resolver", "", "Resolver name (required)")
	f.StringVar(&importFormat, "format", string(parser.FormatCSV), "Snapshot format: csv or password")
	f.StringVar(&importFile, "file", "", "Local snapshot file, - for stdin")
	f.StringVar(&importObject, "object", "", "Archived snapshot object name")
	f.StringVar(&importDelimiter, "delimiter", ",", "CSV column delimiter")
	f.StringVar(&importQuoteChar, "quotechar", `"`, "CSV quote character")
	f.StringVar(&importColumnMapping, "column-mapping", "", "JSON object mapping fields to csv columns")
	f.BoolVar(&importSkipHeader, "skip-header", false, "Skip the first csv row")
	f.StringVar(&importEncoding, "encoding", "", "Force the input charset (default: detect)")
	f.BoolVar(&importDryRun, "dry-run", false, "Only print the plan")
	f.BoolVar(&importYes, "yes", false, "Auto-confirm deletions (non-interactive)")

	_ = importCmd.MarkFlagRequired("group")
	_ = importCmd.MarkFlagRequired("resolver")
	importCmd.MarkFlagsMutuallyExclusive("file", "object")
	importCmd.MarkFlagsOneRequired("file", "object")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	l := a.logger

	content, err := readSnapshot(ctx, a)
	if err != nil {
		return err
	}

	mapping, err := userimport.ParseColumnMapping(importColumnMapping)
	if err != nil {
		return err
	}

	req := userimport.Request{
		Namespace: reconcile.Namespace{GroupID: importGroup, Resolver: importResolver},
		Content:   content,
		Options: parser.Options{
			Format:        parser.Format(importFormat),
			Delimiter:     importDelimiter,
			QuoteChar:     importQuoteChar,
			ColumnMapping: mapping,
			SkipHeader:    importSkipHeader,
			Encoding:      importEncoding,
		},
		DryRun: true,
	}

	svc := a.importService()
	if a.events == nil && !importDryRun {
		l.Info("Running servers see this import once their resolver cache expires; use the redis lock backend to notify them",
			zap.Int("cache_ttl_seconds", a.cfg.Cache.TTLSeconds))
	}

	// Step 1: Plan (always runs)
	l.Info("Planning import...", zap.String("namespace", req.Namespace.String()))
	plan, err := svc.ImportUsers(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to plan import: %w", err)
	}
	printImportReport(cmd.OutOrStdout(), plan)

	if importDryRun {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	// Step 2: Confirm deletions
	if plan.Deleted > 0 && !confirmDeletion(cmd.InOrStdin(), cmd.OutOrStdout(), plan.Deleted) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	// Step 3: Apply
	a.ensureArchive(ctx)
	req.DryRun = false
	report, err := svc.ImportUsers(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to apply import: %w", err)
	}
	l.Info("Import applied",
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("deleted", report.Deleted),
	)
	return nil
}

// readSnapshot loads the snapshot from --file, stdin or the archive.
func readSnapshot(ctx context.Context, a *services) ([]byte, error) {
	switch {
	case importObject != "":
		if a.archive == nil {
			return nil, fmt.Errorf("--object requires IMPORT_ARCHIVE to be enabled")
		}
		return a.archive.Load(ctx, importObject)
	case importFile == "-":
		return io.ReadAll(os.Stdin)
	default:
		data, err := os.ReadFile(importFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", importFile, err)
		}
		return data, nil
	}
}

// printImportReport writes the plan summary and a sample of warnings.
func printImportReport(w io.Writer, r *models.Report) {
	fmt.Fprintf(w, "Parsed users: %d\n", r.Parsed)
	fmt.Fprintf(w, "Plan: %s\n", r.Result)

	const maxShow = 10
	if len(r.Warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "Warnings: %d\n", len(r.Warnings))
	for i, warn := range r.Warnings {
		if i == maxShow {
			fmt.Fprintf(w, "  ... %d more\n", len(r.Warnings)-maxShow)
			break
		}
		fmt.Fprintf(w, "  %s\n", warn)
	}
}

// confirmDeletion prompts the user for confirmation or uses --yes flag.
func confirmDeletion(in io.Reader, out io.Writer, count int) bool {
	if importYes {
		fmt.Fprintln(out, "Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprintf(out, "\n%d users will be deleted. Type 'yes' to confirm: ", count)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}

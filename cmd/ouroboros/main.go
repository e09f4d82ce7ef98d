// Command ouroboros generates procedurally assembled, self-referential
// books and ships the tooling around them: verification, export renditions,
// a book shelf, and a live generation server.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/Ouroboros/core/book"
	"github.com/FocuswithJustin/Ouroboros/core/selfcheck"
	"github.com/FocuswithJustin/Ouroboros/internal/archive"
	"github.com/FocuswithJustin/Ouroboros/internal/export"
	"github.com/FocuswithJustin/Ouroboros/internal/logging"
	"github.com/FocuswithJustin/Ouroboros/internal/server"
	"github.com/FocuswithJustin/Ouroboros/internal/shelf"
	"github.com/FocuswithJustin/Ouroboros/internal/sqlite"
)

const version = "0.1.0"

// CLI defines the command-line interface for ouroboros.
var CLI struct {
	// Global flags
	Verbose   bool   `help:"Enable debug logging"`
	LogFormat string `name:"log-format" enum:"text,json" default:"text" help:"Log output format (text|json)"`

	Generate GenerateCmd `cmd:"" help:"Generate a book to stdout"`
	Verify   VerifyCmd   `cmd:"" help:"Verify a saved book against its manifest"`
	Export   ExportCmd   `cmd:"" help:"Render a saved book in another format"`
	Shelf    ShelfGroup  `cmd:"" help:"Book shelf operations (list, show, rm)"`
	Serve    ServeCmd    `cmd:"" help:"Start the live generation server"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// GenerateCmd generates a book.
type GenerateCmd struct {
	Words  int    `arg:"" optional:"" default:"50000" help:"Minimum word count (0 = Chapter 1 alone)"`
	Seed   int64  `help:"Fixed RNG seed for reproducible output (0 = time-seeded)"`
	Out    string `help:"Directory to write book.txt and book.json into" type:"path"`
	Format string `enum:"text,html,xml" default:"text" help:"Stdout rendition (text|html|xml)"`
	Pack   string `help:"Pack book.txt + book.json into a .tar.xz or .tar.gz archive" type:"path"`
	Shelf  string `env:"OUROBOROS_SHELF" help:"Also record the book in a shelf database" type:"path"`
	Check  bool   `help:"Run the self-check plan after generating (exit 1 on FAIL)"`
}

func (c *GenerateCmd) Run() error {
	if c.Words < 0 {
		return fmt.Errorf("word count must not be negative")
	}

	start := time.Now()
	cfg := book.Config{WordTarget: c.Words, Seed: c.Seed}
	gen, err := book.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %w", err)
	}

	logging.GenerateStart("", c.Words, c.Seed)
	b, err := gen.Generate()
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	m := book.BuildManifest(b, cfg, version)
	logging.GenerateDone(b.ID, len(b.Sections), b.WordCount, time.Since(start))

	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	rendition, err := export.Render(b, format)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", c.Format, err)
	}
	if _, err := os.Stdout.Write(rendition); err != nil {
		return fmt.Errorf("failed to write book: %w", err)
	}

	outDir := c.Out
	if outDir == "" && c.Pack != "" {
		tempDir, err := os.MkdirTemp("", "ouroboros-pack-*")
		if err != nil {
			return fmt.Errorf("failed to create temp directory: %w", err)
		}
		defer os.RemoveAll(tempDir)
		outDir = tempDir
	}

	if outDir != "" {
		if err := writeBookDir(outDir, b, m); err != nil {
			return err
		}
		if c.Out != "" {
			logging.Info("book written", "dir", c.Out)
		}
	}

	if c.Pack != "" {
		if err := archive.Pack(outDir, c.Pack); err != nil {
			return fmt.Errorf("failed to pack book: %w", err)
		}
		logging.Info("book packed", "archive", c.Pack)
	}

	if c.Shelf != "" {
		ctx := context.Background()
		sh, err := shelf.Open(ctx, c.Shelf)
		if err != nil {
			return err
		}
		defer sh.Close()
		if err := sh.Put(ctx, b, m); err != nil {
			return fmt.Errorf("failed to shelve book: %w", err)
		}
		logging.Info("book shelved", "db", c.Shelf, "book_id", b.ID)
	}

	if c.Check {
		report := selfcheck.Run(b, gen.Glossary(), gen.Arena(), m)
		printReport(report)
		if !report.Passed() {
			return fmt.Errorf("self-check failed")
		}
		if format == export.FormatXML {
			if err := checkXMLRendition(rendition, len(b.Sections)); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkXMLRendition runs the structural XML checks over a rendition and
// reports any failure.
func checkXMLRendition(rendition []byte, sections int) error {
	results, err := selfcheck.CheckXML(rendition, sections)
	if err != nil {
		return err
	}
	for _, res := range results {
		if !res.Pass {
			fmt.Fprintf(os.Stderr, "  [FAIL] %s: %s\n", res.Label, res.Detail)
			return fmt.Errorf("xml rendition check failed")
		}
	}
	return nil
}

// writeBookDir writes the canonical text and manifest into dir.
func writeBookDir(dir string, b *book.Book, m *book.Manifest) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "book.txt"), []byte(b.Text()), 0644); err != nil {
		return fmt.Errorf("failed to write book.txt: %w", err)
	}
	if err := book.WriteManifest(m, filepath.Join(dir, "book.json")); err != nil {
		return err
	}
	return nil
}

// loadBook reads the canonical text and manifest from a directory or a
// packed archive.
func loadBook(path string) ([]byte, *book.Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var text, manifestData []byte
	if info.IsDir() {
		text, err = os.ReadFile(filepath.Join(path, "book.txt"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read book text: %w", err)
		}
		manifestData, err = os.ReadFile(filepath.Join(path, "book.json"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read manifest: %w", err)
		}
	} else {
		text, err = archive.ReadFile(path, "book.txt")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read book text: %w", err)
		}
		manifestData, err = archive.ReadFile(path, "book.json")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read manifest: %w", err)
		}
	}

	m, err := book.ParseManifest(manifestData)
	if err != nil {
		return nil, nil, err
	}
	return text, m, nil
}

func printReport(report *selfcheck.Report) {
	for _, res := range report.Results {
		status := "OK"
		if !res.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(os.Stderr, "  [%s] %s", status, res.Label)
		if res.Detail != "" {
			fmt.Fprintf(os.Stderr, ": %s", res.Detail)
		}
		fmt.Fprintln(os.Stderr)
	}
}

// VerifyCmd verifies a saved book against its manifest.
type VerifyCmd struct {
	Path string `arg:"" help:"Book directory or packed archive" type:"path"`
	JSON bool   `help:"Output the report as JSON"`
}

func (c *VerifyCmd) Run() error {
	text, m, err := loadBook(c.Path)
	if err != nil {
		return err
	}

	report := selfcheck.VerifyText(text, m)
	if c.JSON {
		data, err := report.ToJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Printf("Book: %s (%d words, %d sections)\n", m.BookID, m.WordCount, len(m.Sections))
		printReport(report)
	}

	if !report.Passed() {
		return fmt.Errorf("verification failed")
	}
	if !c.JSON {
		fmt.Println("Verification passed!")
	}
	return nil
}

// ExportCmd renders a saved book in another format.
type ExportCmd struct {
	Path   string `arg:"" help:"Book directory or packed archive" type:"path"`
	Format string `enum:"text,html,xml,epub" default:"html" help:"Output format (text|html|xml|epub)"`
	Out    string `help:"Output file (default stdout)" type:"path"`
}

func (c *ExportCmd) Run() error {
	text, m, err := loadBook(c.Path)
	if err != nil {
		return err
	}
	b, err := book.Restore(text, m)
	if err != nil {
		return err
	}

	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	rendition, err := export.Render(b, format)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", c.Format, err)
	}
	if format == export.FormatXML {
		if err := checkXMLRendition(rendition, len(b.Sections)); err != nil {
			return err
		}
	}

	if c.Out == "" {
		_, err = os.Stdout.Write(rendition)
		return err
	}
	if err := os.WriteFile(c.Out, rendition, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	logging.Info("book exported", "format", c.Format, "out", c.Out)
	return nil
}

// ShelfGroup contains shelf operations.
type ShelfGroup struct {
	List ShelfListCmd `cmd:"" help:"List shelved books"`
	Show ShelfShowCmd `cmd:"" help:"Print a shelved book's text"`
	Rm   ShelfRmCmd   `cmd:"" help:"Remove a shelved book"`
}

// ShelfListCmd lists shelved books.
type ShelfListCmd struct {
	DB string `env:"OUROBOROS_SHELF" default:"ouroboros.db" help:"Shelf database path" type:"path"`
}

func (c *ShelfListCmd) Run() error {
	ctx := context.Background()
	sh, err := shelf.Open(ctx, c.DB)
	if err != nil {
		return err
	}
	defer sh.Close()

	infos, err := sh.List(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("Shelf is empty.")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  %s  %6d words  %2d sections\n",
			info.ID, info.CreatedAt.Format("2006-01-02 15:04"), info.WordCount, info.Sections)
	}
	return nil
}

// ShelfShowCmd prints a shelved book's text.
type ShelfShowCmd struct {
	ID       string `arg:"" help:"Book ID (a unique prefix is enough)"`
	DB       string `env:"OUROBOROS_SHELF" default:"ouroboros.db" help:"Shelf database path" type:"path"`
	Manifest bool   `help:"Print the manifest instead of the text"`
}

func (c *ShelfShowCmd) Run() error {
	ctx := context.Background()
	sh, err := shelf.Open(ctx, c.DB)
	if err != nil {
		return err
	}
	defer sh.Close()

	sb, err := sh.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	if c.Manifest {
		data, err := sb.Manifest.ToJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Print(sb.Text)
	return nil
}

// ShelfRmCmd removes a shelved book.
type ShelfRmCmd struct {
	ID string `arg:"" help:"Book ID (a unique prefix is enough)"`
	DB string `env:"OUROBOROS_SHELF" default:"ouroboros.db" help:"Shelf database path" type:"path"`
}

func (c *ShelfRmCmd) Run() error {
	ctx := context.Background()
	sh, err := shelf.Open(ctx, c.DB)
	if err != nil {
		return err
	}
	defer sh.Close()

	if err := sh.Delete(ctx, c.ID); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", c.ID)
	return nil
}

// ServeCmd starts the live generation server.
type ServeCmd struct {
	Addr string `env:"OUROBOROS_ADDR" default:":8741" help:"Listen address"`
}

func (c *ServeCmd) Run() error {
	srv := server.New(server.Config{Addr: c.Addr})
	return srv.ListenAndServe(context.Background())
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("ouroboros %s (sqlite driver: %s)\n", version, sqlite.DriverType())
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ouroboros"),
		kong.Description("Ouroboros - procedurally assembled self-referential books"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level := logging.LevelInfo
	if CLI.Verbose {
		level = logging.LevelDebug
	}
	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/insightdelivered/marksheet-reader/internal/api"
	"github.com/insightdelivered/marksheet-reader/internal/config"
	"github.com/insightdelivered/marksheet-reader/internal/extractor"
	"github.com/insightdelivered/marksheet-reader/internal/marksheet"
	"github.com/insightdelivered/marksheet-reader/internal/models"
	"github.com/insightdelivered/marksheet-reader/internal/ocr"
	"github.com/insightdelivered/marksheet-reader/internal/ocr/gemini"
	"github.com/insightdelivered/marksheet-reader/internal/ocr/remote"
	"github.com/insightdelivered/marksheet-reader/internal/ocr/tesseract"
	"github.com/insightdelivered/marksheet-reader/internal/writer"
)

const version = api.Version

type options struct {
	stream  string
	k       int
	class   models.ClassType
	output  string
	header  bool
	verbose bool
}

func main() {
	// CLI flags
	streamFlag := flag.String("stream", "", "Stream id to check eligibility for, e.g. btech_cse (see -streams)")
	kFlag := flag.Int("k", 0, "Number of best subjects counted (default from config, normally 5)")
	classFlag := flag.String("class", "", "Class type: 10th or 12th (auto-detected if omitted)")
	outputFlag := flag.String("output", "", "Write a CSV report to this path (single input only)")
	headerFlag := flag.Bool("header", true, "Include summary metadata rows in the CSV report")
	configFlag := flag.String("config", "", "Path to JSON config (default $MARKSHEET_CONFIG or marksheet.json)")
	engineFlag := flag.String("engine", "", "OCR engine for images: tesseract, remote, gemini")
	serveFlag := flag.Bool("serve", false, "Run the HTTP service instead of reading files")
	staticFlag := flag.String("static", "", "Directory of static files served by -serve")
	streamsFlag := flag.Bool("streams", false, "List the configured streams and exit")
	verboseFlag := flag.Bool("verbose", false, "Print how every OCR line was classified")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Marksheet Reader
by Insight Delivered

Reads subject marks from scanned board marksheets, computes the
best-of-five percentage and checks admission eligibility per stream.

Usage:
  marksheet-reader [flags] <marksheet> [marksheet2 ...]
  marksheet-reader -serve

A marksheet is OCR text (.txt), an image (.png, .jpg, .tif, .bmp, .webp)
or a PDF. Use - to read OCR text from stdin.

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Score OCR text and check B. Tech CSE eligibility
  marksheet-reader --stream=btech_cse marks.txt

  # OCR a scan with Gemini and write a CSV report
  GEMINI_API_KEY=... marksheet-reader --engine=gemini --output=marks.csv scan.jpg

  # Best of three subjects
  marksheet-reader --k=3 --stream=bca scan.png

  # Run the HTTP service on $PORT
  marksheet-reader --serve --static=./public
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("marksheet-reader v%s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fatalf("Config error: %v\n", err)
	}
	if *engineFlag != "" {
		cfg.OCR.Engine = strings.ToLower(*engineFlag)
	}

	if *streamsFlag {
		for _, s := range cfg.SortedStreams() {
			fmt.Printf("  %-12s %-24s %g%%\n", s.ID, s.DisplayName, s.Cutoff)
		}
		os.Exit(0)
	}

	reader := marksheet.NewReader(cfg.Rules(), cfg.Cutoffs(), cfg.BestOf)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serveFlag {
		if err := serve(ctx, cfg, reader, *staticFlag); err != nil {
			log.Fatal(err)
		}
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	opts := options{
		stream:  strings.TrimSpace(*streamFlag),
		k:       *kFlag,
		output:  *outputFlag,
		header:  *headerFlag,
		verbose: *verboseFlag,
	}
	if *classFlag != "" {
		class, err := models.ParseClassType(*classFlag)
		if err != nil {
			fatalf("%v\n", err)
		}
		opts.class = class
	}
	if opts.k < 0 {
		fatalf("-k must be positive, got %d\n", opts.k)
	}
	if opts.stream != "" {
		if _, ok := cfg.Streams[opts.stream]; !ok {
			fatalf("Unknown stream %q. Run with -streams to list them.\n", opts.stream)
		}
	}

	inputFiles := flag.Args()
	if opts.output != "" && len(inputFiles) > 1 {
		fatalf("-output can only be used with a single input file\n")
	}

	// The engine is built lazily so text and PDF inputs work without one.
	var engine ocr.Engine
	getEngine := func() (ocr.Engine, error) {
		if engine != nil {
			return engine, nil
		}
		e, err := newEngine(ctx, cfg.OCR)
		if err != nil {
			return nil, err
		}
		engine = e
		return engine, nil
	}

	// Process each input file
	for _, inputPath := range inputFiles {
		if err := processFile(ctx, reader, getEngine, cfg.OCR.Languages, inputPath, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

func processFile(ctx context.Context, reader *marksheet.Reader, getEngine func() (ocr.Engine, error), languages []string, inputPath string, opts options) error {
	req := marksheet.Request{Stream: opts.stream, K: opts.k, Class: opts.class, Trace: opts.verbose}

	fmt.Printf("Processing: %s\n", inputPath)

	rep, err := readMarksheet(ctx, reader, getEngine, languages, inputPath, req)
	if err != nil {
		return err
	}
	rep.Source = inputPath

	if rep.Engine != "" {
		fmt.Printf("  OCR engine: %s\n", rep.Engine)
	}
	fmt.Printf("  Class: %s\n", rep.Class)

	if opts.verbose {
		for _, tl := range rep.Trace {
			if tl.Result == models.TraceEmpty {
				continue
			}
			fmt.Printf("  [%3d] %-7s %s\n", tl.LineNum, tl.Result, tl.Text)
		}
	}

	if rep.ExtractionFailed {
		fmt.Println("  Warning: No subject marks found. The scan may be unclear or the layout unrecognised.")
		fmt.Printf("  Enter marks manually for: %s\n", strings.Join(rep.ManualSubjects, ", "))
		return nil
	}

	fmt.Printf("  Found %d subject(s)\n", rep.Subjects.Len())
	selected := make(map[string]bool, len(rep.Aggregate.Selected))
	for _, name := range rep.Aggregate.Selected {
		selected[name] = true
	}
	for _, s := range rep.Subjects.Entries() {
		mark := " "
		if selected[s.Name] {
			mark = "*"
		}
		fmt.Printf("   %s %-28s %3d\n", mark, s.Name, s.Mark)
	}

	agg := rep.Aggregate
	fmt.Printf("  Best of %d: %d/%d = %.2f%%\n", len(agg.Selected), agg.Total, agg.MaxPossible, agg.Percentage)

	if rep.Verdict != nil {
		fmt.Printf("  %s\n", verdictLine(rep.Verdict))
	}

	if opts.output != "" {
		w := &writer.CSVWriter{IncludeHeader: opts.header}
		if err := w.WriteToFile(opts.output, rep); err != nil {
			return fmt.Errorf("CSV write failed: %w", err)
		}
		fmt.Printf("  Output: %s\n", opts.output)
	}

	fmt.Println("  Done.")
	return nil
}

func readMarksheet(ctx context.Context, reader *marksheet.Reader, getEngine func() (ocr.Engine, error), languages []string, inputPath string, req marksheet.Request) (*marksheet.Report, error) {
	if inputPath == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return reader.Evaluate(string(data), req)
	}

	// Validate input file
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file not found: %s", inputPath)
	}

	switch ext := strings.ToLower(filepath.Ext(inputPath)); ext {
	case ".txt":
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, err
		}
		return reader.Evaluate(string(data), req)

	case ".pdf":
		text, err := extractor.ExtractTextCombined(ctx, inputPath, languages...)
		if err != nil {
			return nil, fmt.Errorf("PDF extraction failed: %w", err)
		}
		fmt.Printf("  Extracted %d characters of text\n", len(text))
		return reader.Evaluate(text, req)

	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".gif", ".webp":
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, err
		}
		engine, err := getEngine()
		if err != nil {
			return nil, err
		}
		img := ocr.Image{Data: data, Languages: languages}
		rep, err := reader.Scan(ctx, engine, img, req)
		if errors.Is(err, ocr.ErrNoText) {
			return nil, fmt.Errorf("no text recognised; check the image quality")
		}
		return rep, err

	default:
		return nil, fmt.Errorf("unsupported file type %q (expected .txt, .pdf or an image)", ext)
	}
}

// newEngine builds the OCR engine named in cfg.
func newEngine(ctx context.Context, cfg config.OCRConfig) (ocr.Engine, error) {
	switch cfg.Engine {
	case config.EngineTesseract:
		return tesseract.New(cfg.Languages...), nil
	case config.EngineRemote:
		if cfg.RemoteURL == "" {
			return nil, errors.New("remote OCR engine needs OCR_REMOTE_URL or ocr.remoteUrl")
		}
		return remote.New(cfg.RemoteURL, time.Duration(cfg.TimeoutSeconds)*time.Second), nil
	case config.EngineGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("gemini OCR engine needs GEMINI_API_KEY")
		}
		e, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q (use tesseract, remote or gemini)", cfg.Engine)
	}
}

func serve(ctx context.Context, cfg config.Config, reader *marksheet.Reader, staticDir string) error {
	engine, err := newEngine(ctx, cfg.OCR)
	if err != nil {
		log.Printf("OCR engine unavailable, image uploads disabled: %v", err)
		engine = nil
	}

	app := api.NewApp(&api.Handler{
		Reader:    reader,
		Engine:    engine,
		Languages: cfg.OCR.Languages,
		StaticDir: staticDir,
	})

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	engineName := "none"
	if engine != nil {
		engineName = engine.Name()
	}
	log.Printf("Marksheet reader v%s listening on :%s (ocr: %s, %d streams)", version, cfg.Port, engineName, len(cfg.Streams))
	return app.Listen(":" + cfg.Port)
}

// verdictLine renders the verdict with its distance from the cutoff.
func verdictLine(v *models.EligibilityVerdict) string {
	side := "above"
	if !v.Eligible {
		side = "below"
	}
	return fmt.Sprintf("%s (%.2f %s cutoff)", v.Message(), v.MarginAbs, side)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

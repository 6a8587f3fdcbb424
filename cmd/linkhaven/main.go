package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"

	"github.com/mbuchner/linkhaven/internal/backend"
	"github.com/mbuchner/linkhaven/internal/exporter"
	"github.com/mbuchner/linkhaven/internal/importer"
	"github.com/mbuchner/linkhaven/internal/logger"
	"github.com/mbuchner/linkhaven/internal/realtime"
	"github.com/mbuchner/linkhaven/internal/remote"
	"github.com/mbuchner/linkhaven/internal/search"
	"github.com/mbuchner/linkhaven/internal/startup"
	"github.com/mbuchner/linkhaven/internal/storage"
	"github.com/mbuchner/linkhaven/internal/store"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "login":
			if len(os.Args) < 4 {
				fmt.Fprintf(os.Stderr, "Usage: linkhaven login <email> <password>\n")
				os.Exit(1)
			}
			runLogin(os.Args[2], os.Args[3])
			return
		case "sync":
			runSync()
			return
		case "import":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: linkhaven import <file.html|file.yaml>\n")
				os.Exit(1)
			}
			runImport(os.Args[2])
			return
		case "export":
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			runExport(outputPath)
			return
		case "serve":
			addr := ":8484"
			if len(os.Args) >= 3 {
				addr = os.Args[2]
			}
			runServe(addr)
			return
		default:
			// Treat as search query (join all remaining args)
			query := strings.Join(os.Args[1:], " ")
			runQuickSearch(query)
			return
		}
	}

	printHelp()
}

func printHelp() {
	help := `linkhaven - local-first bookmark manager with backend sync

Usage:
  linkhaven <query>             Quick search → copy URL → open
  linkhaven login <email> <pw>  Sign in to the sync backend
  linkhaven sync                Reconcile with the backend, then follow
                                the realtime feed until interrupted
  linkhaven import <file>       Import bookmarks (Netscape HTML or YAML seed)
  linkhaven export [path]       Export bookmarks to Netscape HTML
  linkhaven serve [addr]        Run the reference sync backend
  linkhaven help                Show this help

Data Storage:
  ~/.config/linkhaven/config.json   Configuration
  ~/.config/linkhaven/state.json    Device-local cache
`
	fmt.Print(help)
}

// app bundles the wired-up components every subcommand needs.
type app struct {
	cfg    *storage.Config
	log    logger.Logger
	store  *store.Store
	client *remote.Client // nil when no backend is configured
}

func openApp() *app {
	configPath, err := storage.DefaultConfigFilePath()
	if err != nil {
		fatalf("Error getting config path: %v", err)
	}
	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		fatalf("Error loading config: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)

	dataDir, err := storage.DefaultDataDir()
	if err != nil {
		fatalf("Error getting data dir: %v", err)
	}
	adapter, err := storage.OpenAdapter(dataDir)
	if err != nil {
		fatalf("Error opening storage: %v", err)
	}
	if cfg.DemoMode {
		adapter = storage.WithDemoGuard(adapter)
	}

	var client *remote.Client
	if cfg.BackendURL != "" {
		client = remote.NewClient(remote.Params{
			BaseURL:     cfg.BackendURL,
			APIKey:      cfg.APIKey,
			SessionPath: filepath.Join(dataDir, "session.json"),
			Logger:      log,
		})
	}

	var rem store.Remote
	if client != nil {
		rem = client
	}
	st := store.New(store.Params{
		Adapter: adapter,
		Remote:  rem,
		Logger:  log,
		Demo:    cfg.DemoMode,
	})

	return &app{cfg: cfg, log: log, store: st, client: client}
}

func (a *app) close() {
	a.store.Close()
	_ = a.log.Sync()
}

func (a *app) hydrate() {
	if _, err := a.store.Hydrate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read cached state: %v\n", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// runLogin signs in and stores the session for later sync runs.
func runLogin(email, password string) {
	a := openApp()
	defer a.close()

	if a.client == nil {
		fatalf("No backendUrl configured; set it in the config file first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	session, err := a.client.Authenticate(ctx, email, password)
	if err != nil {
		fatalf("Login failed: %v", err)
	}
	fmt.Printf("Signed in as %s\n", session.Email)
}

// runSync performs the full boot sequence and then follows the realtime
// feed until interrupted.
func runSync() {
	a := openApp()
	defer a.close()

	if a.client == nil {
		fatalf("No backendUrl configured; set it in the config file first")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coordinator := startup.New(a.store, a.client, a.log)
	coordinator.Run(ctx)

	counts := a.store.Counts()
	fmt.Printf("Synced: %d bookmarks, %d collections, %d tags\n",
		counts.All+counts.Archived+counts.Trash, len(a.store.Collections()), len(a.store.Tags()))

	session := a.client.Session()
	if !session.Valid() {
		fmt.Println("No valid session; skipping realtime feed")
		return
	}

	listener := realtime.New(a.cfg.BackendURL, a.store, a.log)
	defer listener.Close()
	fmt.Println("Following realtime feed, press Ctrl-C to stop")
	if err := listener.Subscribe(ctx, session); err != nil && ctx.Err() == nil {
		fatalf("Realtime feed failed: %v", err)
	}
}

// runImport handles the import subcommand. YAML seed files and Netscape
// HTML exports are told apart by extension.
func runImport(filePath string) {
	a := openApp()
	defer a.close()
	a.hydrate()

	file, err := os.Open(filePath)
	if err != nil {
		fatalf("Error opening file: %v", err)
	}
	defer file.Close()

	var result importer.ParseResult
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		result, err = importer.ParseSeed(file)
	default:
		result, err = importer.ParseHTML(file, a.cfg.MaxImportRecords)
	}
	if err != nil {
		fatalf("Error parsing %s: %v", filePath, err)
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	committer := importer.NewCommitter(a.store,
		time.Duration(a.cfg.ImportPauseMs)*time.Millisecond, a.log)
	summary := committer.Commit(result.Records, importer.CommitOptions{
		SkipDuplicates: true,
		Progress: func(percent int) {
			fmt.Printf("\rImporting... %d%%", percent)
		},
	})
	fmt.Println()

	fmt.Printf("Imported %d bookmarks", summary.Imported)
	if summary.Skipped > 0 {
		fmt.Printf(" (%d duplicates skipped)", summary.Skipped)
	}
	if summary.Failed > 0 {
		fmt.Printf(" (%d failed)", summary.Failed)
	}
	fmt.Println()
}

// runExport handles the export subcommand.
func runExport(outputPath string) {
	a := openApp()
	defer a.close()
	a.hydrate()

	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			fatalf("Error getting default export path: %v", err)
		}
	}

	html := exporter.ExportHTML(a.store.State())
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		fatalf("Error writing export: %v", err)
	}
	fmt.Printf("Exported to %s\n", outputPath)
}

// runServe runs the reference sync backend until interrupted.
func runServe(addr string) {
	configPath, err := storage.DefaultConfigFilePath()
	if err != nil {
		fatalf("Error getting config path: %v", err)
	}
	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		fatalf("Error loading config: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	srv := &http.Server{
		Addr:              addr,
		Handler:           backend.New(log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Infof("backend listening on %s", addr)

	select {
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fatalf("Shutdown failed: %v", err)
		}
	}
}

// runQuickSearch fuzzy-searches titles, copies the best match's URL to the
// clipboard and opens it in the browser.
func runQuickSearch(query string) {
	a := openApp()
	defer a.close()
	a.hydrate()

	results := search.Bookmarks(a.store.Bookmarks(), query)
	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		return
	}

	best := results[0].Bookmark
	fmt.Printf("Opening: %s\n", best.Title)
	if len(results) > 1 {
		fmt.Printf("(%d more matches)\n", len(results)-1)
	}

	if err := clipboard.WriteAll(best.URL); err == nil {
		fmt.Println("URL copied to clipboard")
	}
	openURL(best.URL)
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}

// Package main is the findex CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sableworks/findex/internal/answer"
	"github.com/sableworks/findex/internal/cli"
	"github.com/sableworks/findex/internal/config"
	"github.com/sableworks/findex/internal/embedding"
	"github.com/sableworks/findex/internal/extract"
	"github.com/sableworks/findex/internal/fileid"
	"github.com/sableworks/findex/internal/index"
	"github.com/sableworks/findex/internal/indexer"
	"github.com/sableworks/findex/internal/models"
	"github.com/sableworks/findex/internal/search"
	"github.com/sableworks/findex/internal/server"
	"github.com/sableworks/findex/internal/storage"
	"github.com/sableworks/findex/internal/vector"
	"github.com/sableworks/findex/internal/watcher"
	"github.com/sableworks/findex/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/findex/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "findex server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded (for saving, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "ask":
		runAsk()
	case "index":
		runIndex()
	case "delete":
		runDelete()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("findex version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (directory changes, file indexing, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	idx := components.Indexer
	cache := components.Extraction
	exts := cfg.Watch.Extensions
	watchOpts := []watcher.WatcherOption{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.NewWatcher(
		cfg.Watch.Directories,
		exts,
		cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			cache.Invalidate(path)
			if err := idx.IndexFile(context.Background(), path, exts); err != nil {
				logger.Warn("watch index file failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			cache.Invalidate(path)
			if err := idx.DeleteDocument(context.Background(), fileid.FileDocID(path)); err != nil {
				logger.Warn("watch delete by path failed", zap.String("path", path), zap.Error(err))
			}
		},
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.SyncExistingFiles()

	srvOpts := []server.ServerOption{
		server.WithWatch(watchSvc, resolvedConfigPath),
	}
	if components.Answerer != nil {
		srvOpts = append(srvOpts, server.WithAnswerer(components.Answerer))
	}
	srv := server.NewServer(
		components.Service,
		components.Indexer,
		components.Storage,
		cfg,
		logger,
		srvOpts...,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if cfg.Storage.VectorIndexPath != "" && components.VectorIndex != nil {
		if err := components.VectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
			logger.Warn("vector index save failed", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
		}
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printSearchUsage prints search subcommand usage and mode hints.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: findex search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Modes select which retrieval strategies run:
  • auto            Pick a mode from the query shape (default).
  • comprehensive   Document, word, and sentence strategies together.
  • document        Whole-document search only.
  • word            Word sub-document search (frequency, positions).
  • sentence        Sentence sub-document search (with neighbors).
  • semantic        Embedding-similarity search only.
  • hybrid          Document search plus word/sentence when beneficial.

Examples:
  findex search quarterly revenue report
  findex search "quarterly revenue report"          # same as above
  findex search --mode sentence "before the merger"
  findex search --sort date --file-type .pdf budget
  findex search --output json contract terms        # structured JSON for other apps
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "findex search \"query\" -sort date"
// would otherwise leave -sort unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// parseMode maps a --mode flag value to a search mode. "auto" returns
// autoMode=true with the zero mode; the service picks the real one.
func parseMode(s string) (mode models.SearchMode, autoMode bool, err error) {
	switch s {
	case "auto", "":
		return models.ModeComprehensive, true, nil
	case "comprehensive":
		return models.ModeComprehensive, false, nil
	case "word":
		return models.ModeWordLevel, false, nil
	case "sentence":
		return models.ModeSentenceLevel, false, nil
	case "document":
		return models.ModeDocumentLevel, false, nil
	case "semantic":
		return models.ModeSemantic, false, nil
	case "hybrid":
		return models.ModeHybrid, false, nil
	default:
		return 0, false, fmt.Errorf("unknown mode %q", s)
	}
}

// parseSort maps a --sort flag value to a sort key.
func parseSort(s string) (models.SortKey, error) {
	switch s {
	case "relevance", "":
		return models.SortByRelevance, nil
	case "date":
		return models.SortByDate, nil
	case "name", "file_name":
		return models.SortByFileName, nil
	case "size", "file_size":
		return models.SortByFileSize, nil
	case "frequency", "word_frequency":
		return models.SortByWordFrequency, nil
	case "sentence", "sentence_index":
		return models.SortBySentenceIndex, nil
	default:
		return 0, fmt.Errorf("unknown sort key %q", s)
	}
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path (for direct storage mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	modeFlag := fs.String("mode", "auto", "search mode: auto, comprehensive, document, word, sentence, semantic, or hybrid")
	sortFlag := fs.String("sort", "relevance", "sort key: relevance, date, name, size, frequency, or sentence")
	fileType := fs.String("file-type", "", "keep only results with this extension (e.g. .pdf)")
	dateFrom := fs.String("date-from", "", "keep only results dated on or after (e.g. 2024-01-01)")
	dateTo := fs.String("date-to", "", "keep only results dated on or before")
	minWords := fs.Int("min-words", 0, "keep only results with at least this many words")
	limit := fs.Int("limit", 0, "maximum number of results (0 = default)")
	wordAnalysis := fs.Bool("word-analysis", false, "attach word frequency and position metadata")
	sentenceContext := fs.Bool("sentence-context", false, "attach sentence context metadata")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	mode, autoMode, err := parseMode(*modeFlag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	sortBy, err := parseSort(*sortFlag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	query := &models.Query{
		Text:                   queryStr,
		Mode:                   mode,
		AutoMode:               autoMode,
		SortBy:                 sortBy,
		FileTypeFilter:         *fileType,
		DateFrom:               *dateFrom,
		DateTo:                 *dateTo,
		MinWordCount:           *minWords,
		MaxResults:             *limit,
		IncludeWordAnalysis:    *wordAnalysis,
		IncludeSentenceContext: *sentenceContext,
	}

	if *serverURL != "" {
		// Use HTTP API when server is running (avoids Bleve/SQLite lock conflict).
		response, err := searchViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct storage access (when server is not running).
	components, logger := mustInitialize(*configPathFlag)
	defer logger.Sync()
	defer components.Close()

	response, err := components.Service.Search(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.Query) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runAsk() {
	askArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path (for direct storage mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(askArgs)

	if fs.NArg() < 1 {
		fmt.Println("Usage: findex ask [flags] <question>")
		os.Exit(1)
	}
	question := buildSearchQuery(fs.Args())
	if question == "" {
		fmt.Println("Usage: findex ask [flags] <question>")
		os.Exit(1)
	}

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if *serverURL != "" {
		result, err := askViaHTTP(*serverURL, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteAnswer(os.Stdout, result, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	components, logger := mustInitialize(*configPathFlag)
	defer logger.Sync()
	defer components.Close()

	if components.Answerer == nil {
		fmt.Fprintln(os.Stderr, "Answer backend not configured; set answer.enabled in the config")
		os.Exit(1)
	}
	result, err := components.Answerer.Answer(context.Background(), question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnswer(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL, question string) (*models.AnswerResult, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var result models.AnswerResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	EmbeddingDimensions int    `json:"embedding_dimensions,omitempty"`
	ChunkSize           int    `json:"chunk_size,omitempty"`
	ChunkOverlap        int    `json:"chunk_overlap,omitempty"`
	DatabasePath        string `json:"database_path,omitempty"`
	IndexPath           string `json:"index_path,omitempty"`
	VectorIndexPath     string `json:"vector_index_path,omitempty"`
	AnswerEnabled       bool   `json:"answer_enabled,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Documents      int64                 `json:"documents"`
	Chunks         int64                 `json:"chunks"`
	DiskUsageBytes *int64                `json:"disk_usage_bytes,omitempty"`
	Config         *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		ctx := context.Background()
		docCount, err := components.Storage.CountDocuments(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count documents failed: %v\n", err)
			os.Exit(1)
		}
		chunkCount, err := components.Storage.CountChunks(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count chunks failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Documents: docCount,
			Chunks:    chunkCount,
			Config: &statusConfigResponse{
				EmbeddingDimensions: cfg.Embedding.Dimensions,
				ChunkSize:           cfg.Search.ChunkSize,
				ChunkOverlap:        cfg.Search.ChunkOverlap,
				DatabasePath:        cfg.Storage.DatabasePath,
				IndexPath:           cfg.Storage.IndexPath,
				VectorIndexPath:     cfg.Storage.VectorIndexPath,
				AnswerEnabled:       components.Answerer != nil,
			},
		}
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.IndexPath, cfg.Storage.VectorIndexPath)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("documents:          %d   # count of indexed documents\n", status.Documents)
		fmt.Printf("chunks:             %d   # count of text chunks\n", status.Chunks)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:   %d   # storage + indices on disk\n", *status.DiskUsageBytes)
		}
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			if status.Config.EmbeddingDimensions > 0 {
				fmt.Printf("embedding_dims:     %d\n", status.Config.EmbeddingDimensions)
			}
			if status.Config.ChunkSize > 0 {
				fmt.Printf("chunk_size:         %d\n", status.Config.ChunkSize)
			}
			if status.Config.ChunkOverlap > 0 {
				fmt.Printf("chunk_overlap:      %d\n", status.Config.ChunkOverlap)
			}
			fmt.Printf("answer_enabled:     %t\n", status.Config.AnswerEnabled)
			if status.Config.DatabasePath != "" {
				fmt.Printf("database_path:      %s\n", status.Config.DatabasePath)
			}
			if status.Config.IndexPath != "" {
				fmt.Printf("index_path:         %s\n", status.Config.IndexPath)
			}
			if status.Config.VectorIndexPath != "" {
				fmt.Printf("vector_index_path:  %s\n", status.Config.VectorIndexPath)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: findex index [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	components, logger := mustInitialize(*configPath)
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		exts := components.Config.Watch.Extensions
		n, err := components.Indexer.IndexDirectory(ctx, path, exts)
		if err != nil {
			fmt.Printf("Indexing directory failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %d file(s) from %s\n", n, path)
		return
	}
	// Single file: no extension filter
	if err := components.Indexer.IndexFile(ctx, path, nil); err != nil {
		fmt.Printf("Indexing failed: %v\n", err)
		os.Exit(1)
	}
	absPath, _ := filepath.Abs(path)
	docID := fileid.FileDocID(absPath)
	fmt.Printf("Document indexed successfully: %s\n", docID)
}

func runWatch() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: findex watch <add|remove|list> [path]")
		fmt.Println("  findex watch add <path>     Add directory to watch")
		fmt.Println("  findex watch remove <path>  Remove directory from watch")
		fmt.Println("  findex watch list           List watched directories")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[3:])
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: findex watch add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		body, _ := json.Marshal(map[string]interface{}{"path": path, "sync": true})
		resp, err := http.Post(*serverURL+"/api/v1/watch/directories", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Add failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: findex watch remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/watch/directories?path="+url.QueryEscape(path), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Remove failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		resp, err := http.Get(*serverURL + "/api/v1/watch/directories")
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("List failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Directories []string `json:"directories"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Printf("Parse failed: %v\n", err)
			os.Exit(1)
		}
		for _, d := range out.Directories {
			fmt.Println(d)
		}
	default:
		fmt.Printf("Unknown watch subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: findex delete [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)

	components, logger := mustInitialize(*configPath)
	defer logger.Sync()
	defer components.Close()

	if err := components.Indexer.DeleteDocument(context.Background(), docID); err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s\n", docID)
}

// Components holds initialized services.
type Components struct {
	Config      *config.Config
	Storage     storage.Storage
	Embedder    embedding.Embedder
	VectorIndex vector.VectorIndex
	Provider    *index.BleveProvider
	Extraction  *extract.CachedExtractor
	Service     *search.Service
	Indexer     *indexer.Indexer
	Answerer    *answer.Answerer
}

func (c *Components) Close() {
	if c.Provider != nil {
		_ = c.Provider.Close()
	}
	if c.VectorIndex != nil {
		_ = c.VectorIndex.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// mustInitialize loads config, builds a logger, and initializes components,
// exiting on any failure. Used by the direct-storage subcommands.
func mustInitialize(configPath string) (*Components, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	return components, logger
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var embedder embedding.Embedder
	onnxEmbedder, err := embedding.NewONNXEmbedder(
		cfg.Embedding.ModelPath,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		embedder = onnxEmbedder
	}

	vectorIndex, err := vector.NewVectorIndex("memory", cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	if cfg.Storage.VectorIndexPath != "" {
		if loadErr := vectorIndex.Load(cfg.Storage.VectorIndexPath); loadErr != nil {
			logger.Warn("vector index load skipped (use full sync)", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(loadErr))
		}
	}

	providerOpts := []index.ProviderOption{
		index.WithSemantic(embedder, vectorIndex, store),
	}
	if debug {
		providerOpts = append(providerOpts, index.WithLogger(logger))
	}
	provider, err := index.NewBleveProvider(cfg.Storage.IndexPath, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize lexical index: %w", err)
	}

	extractor := extract.NewExtractor()
	cached := extract.NewCachedExtractor(extractor, 0,
		time.Duration(cfg.Search.ExtractionCacheMinutes)*time.Minute)

	service := search.NewService(provider, cached, logger)

	var answerer *answer.Answerer
	if cfg.Answer.Enabled {
		gen, err := answer.NewGenerator(cfg.Answer.BaseURL, cfg.Answer.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize answer backend: %w", err)
		}
		answerer = answer.NewAnswerer(service, gen.Generate, logger)
	}

	idxOpts := []indexer.IndexerOption{}
	if debug {
		idxOpts = append(idxOpts, indexer.WithLogger(logger))
	}
	idx := indexer.NewIndexer(store, embedder, vectorIndex, provider, &cfg.Search, extractor, idxOpts...)

	return &Components{
		Config:      cfg,
		Storage:     store,
		Embedder:    embedder,
		VectorIndex: vectorIndex,
		Provider:    provider,
		Extraction:  cached,
		Service:     service,
		Indexer:     idx,
		Answerer:    answerer,
	}, nil
}

func printUsage() {
	fmt.Println(`findex - Multi-level local document search engine

Usage:
  findex server [flags]           Start the HTTP server
  findex search [flags] <query>   Search documents
  findex ask [flags] <question>   Ask a question answered from document content
  findex index [flags] <file>     Index a document or directory
  findex delete [flags] <id>      Delete a document
  findex status [flags]           Show engine/storage/index status
  findex watch <add|remove|list>  Manage watched directories
  findex version                  Show version
  findex help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/findex/config.yaml)
  --debug            Enable debug logging (directory changes, file indexing, etc.)

Search Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to use direct storage when server is not running.
  --mode string      Search mode: auto, comprehensive, document, word, sentence, semantic, or hybrid (default: auto)
  --sort string      Sort key: relevance, date, name, size, frequency, or sentence (default: relevance)
  --file-type string Keep only results with this extension (e.g. .pdf)
  --date-from string Keep only results dated on or after (e.g. 2024-01-01)
  --date-to string   Keep only results dated on or before
  --min-words int    Keep only results with at least this many words
  --limit int        Maximum number of results (default: 50)
  --output string    Output format: text, compact, or json (default: text)

Ask Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Watch Flags:
  --server string    Server URL (default: http://localhost:8080)

Examples:
  findex server
  findex search quarterly revenue report
  findex search --mode sentence "before the merger"
  findex search --sort date --file-type .pdf budget
  findex search --output json contract terms
  findex ask "what is the payment deadline in the vendor contract"
  findex index documents/
  findex delete doc-123
  findex status
  findex watch add /path/to/docs
  findex watch list`)
}

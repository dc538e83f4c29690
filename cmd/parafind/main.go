package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/parafind/parafind/internal/action"
	"github.com/parafind/parafind/internal/config"
	"github.com/parafind/parafind/internal/entrytype"
	"github.com/parafind/parafind/internal/fatal"
	"github.com/parafind/parafind/internal/filter"
	"github.com/parafind/parafind/internal/loghandler"
	"github.com/parafind/parafind/internal/stats"
	"github.com/parafind/parafind/internal/supervisor"
)

var version = "dev"

func main() {
	os.Exit(run())
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: CLI entry point wires every flag into Config
func run() int {
	argv, execCmdLine, err := extractExec(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var (
		threads       int
		godeep        int64
		maxDepth      uint16
		typeStr       string
		nameArgs      []string
		pathArg       string
		sizeArg       string
		atimeArg      string
		ctimeArg      string
		mtimeArg      string
		uidArg        int64
		gidArg        int64
		hasUIDArg     bool
		hasGIDArg     bool
		userArg       string
		groupArg      string
		newerArg      string
		mountFlag     bool
		print0        bool
		jsonOutput    bool
		noPrint       bool
		copyTo        string
		copyTimeFlag  bool
		ignoreCopyErr bool
		unlinkFlag    bool
		ignoreUnlErr  bool
		quitFirst     bool
		aclFlag       bool
		noSummary     bool
		verbose       bool
		quiet         bool
		bwLimitStr    string
		verifyFlag    bool
		logFile       string
		logJSON       bool
		showVersion   bool
	)

	rootCmd := &cobra.Command{
		Use:           "parafind [OPTIONS...] [PATHS...]",
		Short:         "Parallel filesystem traversal and filtering tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "parafind %s\n", version)
				return nil
			}

			fc, loadErr := config.Load()
			if loadErr != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", loadErr)
			}
			applyConfigDefaults(cmd, fc.Defaults, &threads, &bwLimitStr, &verifyFlag, &noSummary, &jsonOutput, &aclFlag)

			logLevel := slog.LevelWarn
			switch {
			case verbose:
				logLevel = slog.LevelDebug
			case !quiet:
				logLevel = slog.LevelInfo
			}
			var handler slog.Handler
			if logJSON {
				handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
			} else {
				handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
			}
			if logFile != "" {
				lf, fErr := os.Create(logFile)
				if fErr != nil {
					return fmt.Errorf("open log file: %w", fErr)
				}
				defer lf.Close()
				handler = loghandler.NewMultiHandler(handler, slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			logger := slog.New(handler)

			cfg := &config.Config{
				ScanPaths:           args,
				NumThreads:          threads,
				GodeepThreshold:     godeep,
				MaxDirDepth:         maxDepth,
				PrintDisabled:       noPrint,
				JSONOutput:          jsonOutput,
				Print0:              print0,
				CopyDestDir:         copyTo,
				CopyTimeUpdate:      copyTimeFlag,
				IgnoreCopyErrors:    ignoreCopyErr,
				UnlinkFiles:         unlinkFlag,
				IgnoreUnlinkErrors:  ignoreUnlErr,
				ExecCmdLine:         execCmdLine,
				CheckACLs:           aclFlag,
				QuitAfterFirstMatch: quitFirst,
				PrintSummary:        !noSummary,
				PrintVerbose:        verbose,
				Verify:              verifyFlag,
			}

			if typeStr != "" {
				t, ok := entrytype.FromSearchChar(typeStr[0])
				if !ok {
					return fmt.Errorf("invalid --type %q", typeStr)
				}
				cfg.SearchType = t
				cfg.HasSearchType = true
			}
			cfg.NameFilters = nameArgs
			cfg.PathFilter = pathArg

			now := time.Now().Unix()
			if sizeArg != "" {
				th, pErr := filter.ParseSizeArg(sizeArg)
				if pErr != nil {
					return fmt.Errorf("invalid --size: %w", pErr)
				}
				cfg.Size = th
			}
			if atimeArg != "" {
				th, pErr := filter.ParseTimeArg(atimeArg, now)
				if pErr != nil {
					return fmt.Errorf("invalid --atime: %w", pErr)
				}
				cfg.Atime = th
			}
			if ctimeArg != "" {
				th, pErr := filter.ParseTimeArg(ctimeArg, now)
				if pErr != nil {
					return fmt.Errorf("invalid --ctime: %w", pErr)
				}
				cfg.Ctime = th
			}
			if mtimeArg != "" {
				th, pErr := filter.ParseTimeArg(mtimeArg, now)
				if pErr != nil {
					return fmt.Errorf("invalid --mtime: %w", pErr)
				}
				cfg.Mtime = th
			}
			if newerArg != "" {
				info, sErr := os.Stat(newerArg)
				if sErr != nil {
					return fmt.Errorf("invalid --newer: %w", sErr)
				}
				mtime := info.ModTime().Unix()
				cfg.Mtime = filter.Thresholds{Greater: &mtime}
			}

			hasUIDArg = cmd.Flags().Changed("uid")
			hasGIDArg = cmd.Flags().Changed("gid")

			if userArg != "" {
				u, uErr := user.Lookup(userArg)
				if uErr != nil {
					return fmt.Errorf("invalid --user: %w", uErr)
				}
				uid, convErr := strconv.ParseUint(u.Uid, 10, 32)
				if convErr != nil {
					return fmt.Errorf("resolve --user %q: %w", userArg, convErr)
				}
				uid32 := uint32(uid)
				cfg.FilterUID = &uid32
			} else if hasUIDArg {
				uid32 := uint32(uidArg)
				cfg.FilterUID = &uid32
			}
			if groupArg != "" {
				g, gErr := user.LookupGroup(groupArg)
				if gErr != nil {
					return fmt.Errorf("invalid --group: %w", gErr)
				}
				gid, convErr := strconv.ParseUint(g.Gid, 10, 32)
				if convErr != nil {
					return fmt.Errorf("resolve --group %q: %w", groupArg, convErr)
				}
				gid32 := uint32(gid)
				cfg.FilterGID = &gid32
			} else if hasGIDArg {
				gid32 := uint32(gidArg)
				cfg.FilterGID = &gid32
			}

			if mountFlag {
				root := "."
				if len(args) > 0 {
					root = args[0]
				}
				resolved := entrytype.Resolve(unix.AT_FDCWD, root, entrytype.NoHint, true)
				if resolved.StatErr != nil {
					return fmt.Errorf("resolve device for --mount: %w", resolved.StatErr)
				}
				dev := resolved.Stat.Dev
				cfg.FilterMountID = &dev
			}

			if bwLimitStr != "" {
				th, pErr := filter.ParseSizeArg(bwLimitStr)
				if pErr != nil || th.Exact == nil {
					return fmt.Errorf("invalid --bwlimit %q", bwLimitStr)
				}
				cfg.BWLimiter = action.NewBWLimiter(*th.Exact)
			}

			if threads <= 0 {
				threads = min(runtime.NumCPU(), 32)
				cfg.NumThreads = threads
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			filterPipeline, err := buildFilterPipeline(cfg)
			if err != nil {
				return err
			}

			counters := stats.New()
			sig := fatal.New()
			writer := action.NewWriter(os.Stdout)
			actionPipeline := action.NewPipeline(action.Config{
				PrintDisabled:      cfg.PrintDisabled,
				JSONOutput:         cfg.JSONOutput,
				Print0:             cfg.Print0,
				StatAll:            cfg.StatAll,
				ExecCmdLine:        cfg.ExecCmdLine,
				CopyDestDir:        cfg.CopyDestDir,
				CopyTimeUpdate:     cfg.CopyTimeUpdate,
				IgnoreCopyErrors:   cfg.IgnoreCopyErrors,
				Verify:             cfg.Verify,
				BWLimiter:          cfg.BWLimiter,
				UnlinkFiles:        cfg.UnlinkFiles,
				IgnoreUnlinkErrors: cfg.IgnoreUnlinkErrors,
			}, writer, counters, logger, sig)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// finished is closed before stop() cancels ctx on return, so only a
			// delivered signal, not normal completion, reaches sig.Trigger.
			finished := make(chan struct{})
			defer close(finished)
			go func() {
				<-ctx.Done()
				select {
				case <-finished:
				default:
					sig.Trigger()
				}
			}()

			sup := supervisor.New(cfg, filterPipeline, actionPipeline, counters, sig, logger)
			code := sup.Run(ctx)
			if code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.Flags().IntVarP(&threads, "threads", "n", 0, "number of worker goroutines (default: min(NumCPU, 32))")
	rootCmd.Flags().Int64Var(&godeep, "godeep", 0, "stack-size threshold below which a worker pushes instead of recursing inline (default: threads)")
	rootCmd.Flags().Uint16Var(&maxDepth, "maxdepth", ^uint16(0), "maximum directory recursion depth")

	rootCmd.Flags().StringVar(&typeStr, "type", "", "match entry type: b,c,d,p,l,f,s")
	rootCmd.Flags().StringArrayVar(&nameArgs, "name", nil, "match basename against glob PATTERN (repeatable)")
	rootCmd.Flags().StringVar(&pathArg, "path", "", "match full path against glob PATTERN")

	rootCmd.Flags().StringVar(&sizeArg, "size", "", "match size, e.g. +10M, -512k, 4G")
	rootCmd.Flags().StringVar(&atimeArg, "atime", "", "match access time in days, e.g. -7, +30")
	rootCmd.Flags().StringVar(&ctimeArg, "ctime", "", "match change time in days")
	rootCmd.Flags().StringVar(&mtimeArg, "mtime", "", "match modification time in days")

	rootCmd.Flags().Int64Var(&uidArg, "uid", 0, "match numeric uid")
	rootCmd.Flags().Int64Var(&gidArg, "gid", 0, "match numeric gid")
	rootCmd.Flags().StringVar(&userArg, "user", "", "match owner by name")
	rootCmd.Flags().StringVar(&groupArg, "group", "", "match group by name")
	rootCmd.Flags().StringVar(&newerArg, "newer", "", "match entries modified more recently than PATH")
	rootCmd.Flags().BoolVar(&mountFlag, "mount", false, "do not cross mount points (alias --xdev)")
	rootCmd.Flags().BoolVar(&mountFlag, "xdev", false, "alias for --mount")

	rootCmd.Flags().BoolVar(&print0, "print0", false, "NUL-separate printed paths")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print matches as JSON records")
	rootCmd.Flags().BoolVar(&noPrint, "noprint", false, "suppress the print action")

	rootCmd.Flags().StringVar(&copyTo, "copyto", "", "copy matches into DIR")
	rootCmd.Flags().BoolVar(&copyTimeFlag, "copy-time", false, "preserve atime/mtime on copy")
	rootCmd.Flags().BoolVar(&ignoreCopyErr, "ignore-copy-errors", false, "do not fail the run on a copy error")
	rootCmd.Flags().BoolVar(&unlinkFlag, "delete", false, "unlink matched, non-directory entries")
	rootCmd.Flags().BoolVar(&unlinkFlag, "unlink", false, "alias for --delete")
	rootCmd.Flags().BoolVar(&ignoreUnlErr, "ignore-unlink-errors", false, "do not fail the run on an unlink error")

	rootCmd.Flags().BoolVar(&quitFirst, "quit", false, "stop after the first match")
	rootCmd.Flags().BoolVar(&aclFlag, "acl", false, "probe for POSIX ACLs on every entry")
	rootCmd.Flags().BoolVar(&noSummary, "nosummary", false, "suppress the end-of-run summary line")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostics")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "show only warning and error diagnostics")

	rootCmd.Flags().StringVar(&bwLimitStr, "bwlimit", "", "cap aggregate copy throughput, e.g. 10M")
	rootCmd.Flags().BoolVar(&verifyFlag, "verify", false, "verify a BLAKE3 checksum after each copy")

	rootCmd.Flags().StringVar(&logFile, "log", "", "additionally write structured JSON diagnostics to FILE")
	rootCmd.Flags().BoolVar(&logJSON, "log-json", false, "emit diagnostics as JSON on stderr")

	rootCmd.SetArgs(argv)

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok { //nolint:errorlint // sentinel type, not a wrapped chain
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if rootCmd.Flags().Changed("help") {
		return 1
	}

	return 0
}

func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, threads *int, bwLimit *string, verify, noSummary, jsonOutput, acl *bool) {
	if !cmd.Flags().Changed("threads") && defaults.Threads != nil {
		*threads = *defaults.Threads
	}
	if !cmd.Flags().Changed("bwlimit") && defaults.BWLimit != nil {
		*bwLimit = *defaults.BWLimit
	}
	if !cmd.Flags().Changed("verify") && defaults.Verify != nil {
		*verify = *defaults.Verify
	}
	if !cmd.Flags().Changed("nosummary") && defaults.NoSummary != nil {
		*noSummary = *defaults.NoSummary
	}
	if !cmd.Flags().Changed("json") && defaults.JSONOutput != nil {
		*jsonOutput = *defaults.JSONOutput
	}
	if !cmd.Flags().Changed("acl") && defaults.CheckACLs != nil {
		*acl = *defaults.CheckACLs
	}
}

func buildFilterPipeline(cfg *config.Config) (*filter.Pipeline, error) {
	p := &filter.Pipeline{
		SearchType:    cfg.SearchType,
		HasSearchType: cfg.HasSearchType,
		Size:          cfg.Size,
		Atime:         cfg.Atime,
		Ctime:         cfg.Ctime,
		Mtime:         cfg.Mtime,
		UID:           cfg.FilterUID,
		GID:           cfg.FilterGID,
	}
	p.HasUID = cfg.FilterUID != nil
	p.HasGID = cfg.FilterGID != nil

	for _, pattern := range cfg.NameFilters {
		compiled, err := filter.NewPattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid --name %q: %w", pattern, err)
		}
		p.NameFilters = append(p.NameFilters, compiled)
	}
	if cfg.PathFilter != "" {
		compiled, err := filter.NewPattern(cfg.PathFilter)
		if err != nil {
			return nil, fmt.Errorf("invalid --path %q: %w", cfg.PathFilter, err)
		}
		p.PathFilter = compiled
	}
	return p, nil
}

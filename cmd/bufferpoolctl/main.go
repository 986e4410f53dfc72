// Command bufferpoolctl is an interactive shell over a bufferpool.Pool:
// a readline-driven loop with its own persisted command history and a
// small set of meta commands, for driving pin/unpin/write/flush
// traffic against a single page file by hand.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/arvindn/pagepool/internal/bufferpool"
	"github.com/arvindn/pagepool/internal/config"
)

func isMetaCommand(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "\\") || line == "quit" || line == "exit"
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML pool config (overrides -data/-capacity/-strategy)")
		dataPath   = flag.String("data", "bufferpoolctl.db", "page file path")
		capacity   = flag.Int("capacity", 16, "frame capacity")
		strategy   = flag.String("strategy", "fifo", "replacement strategy: fifo|lru|lru-k|clock")
		histPath   = flag.String("history", defaultHistoryPath(), "command history file path")
		histMax    = flag.Int("history-max", 2000, "max history lines loaded into memory")
	)
	flag.Parse()

	path := *dataPath
	frames := *capacity
	strat := *strategy

	if *configPath != "" {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		path = cfg.Pool.DataFile
		frames = cfg.Pool.Capacity
		strat = cfg.Pool.Strategy
	}

	strategyVal, err := config.ParseStrategy(strat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	pool, err := bufferpool.Open(path, frames, strategyVal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open pool: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := pool.Shutdown(); err != nil {
			slog.Error("bufferpoolctl: shutdown failed", "err", err)
		}
	}()

	h := NewHistory(*histPath)
	_ = h.Load(*histMax)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bufferpool> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	for _, line := range h.lines {
		_ = rl.SaveHistory(line)
	}

	repl := newREPL(pool)

	fmt.Printf("opened %s (capacity=%d strategy=%s)\n", path, frames, strategyVal)
	fmt.Println("type \\help for help")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println("^C")
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isMetaCommand(line) {
			switch line {
			case "quit", "exit", "\\q":
				return
			case "\\help":
				printHelp()
			case "\\history":
				h.Print(50)
			default:
				fmt.Printf("unknown command: %s\n", line)
			}
			continue
		}

		_ = h.Append(line)
		_ = rl.SaveHistory(line)

		if err := repl.dispatch(line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func printHelp() {
	fmt.Println(`meta commands:
  \q | quit | exit        quit
  \history                print command history
  \help                   show this help

pool commands:
  pin <page>              pin a page, loading it if necessary
  unpin <page>            unpin a previously pinned page
  write <page> <text>     write text into a page (pinned transiently if needed) and mark it dirty
  dirty <page>            mark a pinned page dirty without writing
  force <page>            flush a pinned page immediately
  flush                   flush every dirty, unpinned frame
  stats                   print frame contents, dirty flags, pin counts and IO counters`)
}

// repl tracks the handles this session currently holds pinned, since
// separate commands within one interactive session must be able to
// write and unpin a page pinned by an earlier command.
type repl struct {
	pool   *bufferpool.Pool
	pinned map[int]*bufferpool.PageHandle
}

func newREPL(pool *bufferpool.Pool) *repl {
	return &repl{pool: pool, pinned: make(map[int]*bufferpool.PageHandle)}
}

func (r *repl) dispatch(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "pin":
		return r.cmdPin(fields)
	case "unpin":
		return r.cmdUnpin(fields)
	case "write":
		return r.cmdWrite(fields, line)
	case "dirty":
		return r.cmdDirty(fields)
	case "force":
		return r.cmdForce(fields)
	case "flush":
		return r.pool.ForceFlushPool()
	case "stats":
		r.cmdStats()
		return nil
	default:
		return fmt.Errorf("unknown command %q (try \\help)", fields[0])
	}
}

func parsePageArg(fields []string) (int, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("expected a page number argument")
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("invalid page number %q", fields[1])
	}
	return n, nil
}

func (r *repl) cmdPin(fields []string) error {
	page, err := parsePageArg(fields)
	if err != nil {
		return err
	}
	h, err := r.pool.Pin(page)
	if err != nil {
		return err
	}
	r.pinned[page] = h

	frame := -1
	for i, pn := range r.pool.FrameContents() {
		if pn == page {
			frame = i
			break
		}
	}
	fmt.Printf("pinned page %d in frame %d\n", page, frame)
	fmt.Printf("  % x\n", h.Data[:32])
	return nil
}

func (r *repl) cmdUnpin(fields []string) error {
	page, err := parsePageArg(fields)
	if err != nil {
		return err
	}
	h, ok := r.pinned[page]
	if !ok {
		return fmt.Errorf("page %d is not pinned by this session", page)
	}
	if err := r.pool.Unpin(h); err != nil {
		return err
	}
	delete(r.pinned, page)
	fmt.Printf("unpinned page %d\n", page)
	return nil
}

func (r *repl) cmdWrite(fields []string, line string) error {
	page, err := parsePageArg(fields)
	if err != nil {
		return err
	}

	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 3 {
		return fmt.Errorf("expected: write <page> <text>")
	}
	text := parts[2]

	// Pin transiently if the session doesn't already hold the page.
	h, held := r.pinned[page]
	if !held {
		h, err = r.pool.Pin(page)
		if err != nil {
			return err
		}
	}

	n := copy(h.Data, text)
	for i := n; i < len(h.Data); i++ {
		h.Data[i] = 0
	}

	if err := r.pool.MarkDirty(h); err != nil {
		return err
	}
	if !held {
		if err := r.pool.Unpin(h); err != nil {
			return err
		}
	}
	fmt.Printf("wrote %d bytes to page %d\n", n, page)
	return nil
}

func (r *repl) cmdDirty(fields []string) error {
	page, err := parsePageArg(fields)
	if err != nil {
		return err
	}
	h, ok := r.pinned[page]
	if !ok {
		return fmt.Errorf("page %d is not pinned by this session", page)
	}
	return r.pool.MarkDirty(h)
}

func (r *repl) cmdForce(fields []string) error {
	page, err := parsePageArg(fields)
	if err != nil {
		return err
	}
	h, ok := r.pinned[page]
	if !ok {
		return fmt.Errorf("page %d is not pinned by this session", page)
	}
	return r.pool.ForcePage(h)
}

func (r *repl) cmdStats() {
	contents := r.pool.FrameContents()
	dirty := r.pool.DirtyFlags()
	fix := r.pool.FixCounts()

	fmt.Printf("%-6s %-6s %-6s %-6s\n", "frame", "page", "dirty", "fix")
	for i := range contents {
		fmt.Printf("%-6d %-6d %-6t %-6d\n", i, contents[i], dirty[i], fix[i])
	}
	fmt.Printf("reads=%d writes=%d\n", r.pool.NumReadIO(), r.pool.NumWriteIO())
}

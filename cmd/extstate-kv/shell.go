package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("get"),
	readline.PcItem("list"),
	readline.PcItem("keys"),
	readline.PcItem("add"),
	readline.PcItem("update"),
	readline.PcItem("delete"),
	readline.PcItem("raw"),
	readline.PcItem("section"),
	readline.PcItem("help"),
	readline.PcItem("exit"),
)

const shellHelp = `Commands:
  get <key>              print one record
  list                   print every record
  keys                   print the key index
  add <json>             store a new record
  update <key> <json>    overwrite a record
  delete <key>           remove a record
  raw <key>              print the stored chunks of a key
  section [name]         show or switch the section
  help                   show this text
  exit                   leave the shell
`

var errExit = errors.New("exit")

func (a *app) shell(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          a.prompt(),
		HistoryFile:     filepath.Join(os.TempDir(), ".extstate_kv_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return fmt.Errorf("initialise readline: %w", err)
	}
	defer rl.Close()

	for {
		rl.SetPrompt(a.prompt())
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := a.exec(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
	}
}

func (a *app) prompt() string {
	return fmt.Sprintf("extstate-kv:%s> ", a.opts.section)
}

// exec runs one shell line.
func (a *app) exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "get":
		return a.withKey(rest, func(key string) error { return a.get(ctx, key) })
	case "list":
		return a.list(ctx)
	case "keys":
		return a.keys(ctx)
	case "add":
		if rest == "" {
			return errors.New("usage: add <json>")
		}
		return a.add(ctx, rest)
	case "update":
		key, body, ok := strings.Cut(rest, " ")
		if !ok || strings.TrimSpace(body) == "" {
			return errors.New("usage: update <key> <json>")
		}
		return a.update(ctx, key, strings.TrimSpace(body))
	case "delete":
		return a.withKey(rest, func(key string) error { return a.delete(ctx, key) })
	case "raw":
		return a.withKey(rest, func(key string) error { return a.raw(ctx, key) })
	case "section":
		if rest != "" {
			a.opts.section = rest
		}
		fmt.Fprintln(a.out, a.opts.section)
		return nil
	case "help", ".help":
		fmt.Fprint(a.out, shellHelp)
		return nil
	case "exit", "quit", ".exit":
		return errExit
	default:
		return fmt.Errorf("unknown command %q, try help", name)
	}
}

func (a *app) withKey(rest string, fn func(string) error) error {
	if rest == "" || strings.ContainsAny(rest, " \t") {
		return errors.New("expected exactly one key")
	}
	return fn(rest)
}

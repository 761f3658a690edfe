package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/fatih/color"

	"catalog/btree"
	"catalog/db"
)

var (
	promptColor = color.New(color.FgHiBlue, color.Bold)
	errColor    = color.New(color.FgRed)
	okColor     = color.New(color.FgGreen)
	idColor     = color.New(color.FgYellow).SprintFunc()
)

type Cli struct {
	scanner    *bufio.Scanner
	out        io.Writer
	catalog    *db.Catalog
	visualizer *btree.Visualizer
	verbose    bool // print the tree after every mutation
}

func NewCli(s *bufio.Scanner, out io.Writer, c *db.Catalog) *Cli {
	return &Cli{
		scanner:    s,
		out:        out,
		catalog:    c,
		visualizer: &btree.Visualizer{Tree: c.Tree()},
	}
}

// SetVerbose makes the shell print the tree structure after each change.
func (c *Cli) SetVerbose(v bool) {
	c.verbose = v
}

// Start runs the read-eval loop until EXIT or end of input.
func (c *Cli) Start() {
	c.printHelp()
	c.printPrompt()
	for c.scanner.Scan() {
		if done := c.processInput(c.scanner.Text()); done {
			return
		}
		c.printPrompt()
	}
}

func (c *Cli) printHelp() {
	fmt.Fprint(c.out, `
Parts Catalog

Available Commands:
  GET <id>              Show the part stored under id
  ADD <id> <desc...>    Add a part
  DEL <id>              Delete a part
  MOD <id> <desc...>    Replace the description of a part
  LIST                  List all parts in ID order
  RANGE <from> [to]     List parts with from <= id < to
  TREE                  Show the index structure
  SAVE                  Write the catalog file
  HELP                  Show this help
  EXIT                  Leave the shell, optionally saving
`)
}

func (c *Cli) printPrompt() {
	promptColor.Fprint(c.out, "> ")
}

func (c *Cli) processInput(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return false
	}
	command := strings.ToLower(fields[0])
	switch command {
	default:
		errColor.Fprintf(c.out, "Unknown command \"%s\"\n", command)
	case "get":
		c.processGetCommand(fields[1:])
	case "add":
		c.processAddCommand(fields[1:], line)
	case "del":
		c.processDeleteCommand(fields[1:])
	case "mod":
		c.processModifyCommand(fields[1:], line)
	case "list":
		c.processListCommand()
	case "range":
		c.processRangeCommand(fields[1:])
	case "tree":
		c.printTree()
	case "save":
		c.save()
	case "help":
		c.printHelp()
	case "exit":
		c.processExitCommand()
		return true
	}
	return false
}

func (c *Cli) printPart(p btree.Part) {
	fmt.Fprintf(c.out, "%s: %s\n", idColor(p.ID), p.Description)
}

func (c *Cli) printTree() {
	// Load, Reset and Restore replace the tree, keep the visualizer on the live one
	c.visualizer.Tree = c.catalog.Tree()
	fmt.Fprint(c.out, c.visualizer.Visualize())
}

func (c *Cli) afterMutation() {
	if c.verbose {
		c.printTree()
	}
}

func (c *Cli) processGetCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: GET <id>")
		return
	}
	p, ok := c.catalog.Search(args[0])
	if !ok {
		fmt.Fprintln(c.out, "Not found")
		return
	}
	c.printPart(p)
}

func (c *Cli) processAddCommand(args []string, line string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: ADD <id> <description>")
		return
	}
	if err := c.catalog.Insert(args[0], description(line)); err != nil {
		errColor.Fprintln(c.out, err)
		return
	}
	c.afterMutation()
}

func (c *Cli) processDeleteCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: DEL <id>")
		return
	}
	if !c.catalog.Delete(args[0]) {
		fmt.Fprintln(c.out, "Not found")
		return
	}
	c.afterMutation()
}

func (c *Cli) processModifyCommand(args []string, line string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: MOD <id> <description>")
		return
	}
	if err := c.catalog.Modify(args[0], description(line)); err != nil {
		errColor.Fprintln(c.out, err)
		return
	}
	c.afterMutation()
}

// description is the text after the command and the ID, inner spacing kept as typed
func description(line string) string {
	rest := strings.TrimSpace(line)
	for range 2 {
		i := strings.IndexFunc(rest, unicode.IsSpace)
		if i < 0 {
			return ""
		}
		rest = strings.TrimLeftFunc(rest[i:], unicode.IsSpace)
	}
	return rest
}

func (c *Cli) processListCommand() {
	for _, p := range c.catalog.List() {
		c.printPart(p)
	}
}

func (c *Cli) processRangeCommand(args []string) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(c.out, "Usage: RANGE <from> [to]")
		return
	}
	var to string
	if len(args) == 2 {
		to = args[1]
	}
	for _, p := range c.catalog.Range(args[0], to) {
		c.printPart(p)
	}
}

func (c *Cli) save() {
	if err := c.catalog.Save(); err != nil {
		slog.Error("saving catalog", "err", err)
		errColor.Fprintln(c.out, "Error saving parts:", err)
		return
	}
	okColor.Fprintf(c.out, "Saved %d parts to %s\n", c.catalog.Len(), c.catalog.Path())
}

func (c *Cli) processExitCommand() {
	fmt.Fprint(c.out, "Save changes? (yes/no): ")
	if !c.scanner.Scan() {
		return
	}
	if strings.EqualFold(strings.TrimSpace(c.scanner.Text()), "yes") {
		c.save()
	}
}

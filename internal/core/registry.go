package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-faster/errors"
)

// ErrUnknownAction is returned when no command has the requested name.
var ErrUnknownAction = errors.New("unknown action")

// Step runs one handler over one sheet as part of a command.
type Step struct {
	Handler Handler

	// ForceSupplement updates duplicates instead of rejecting them,
	// regardless of the run's options.
	ForceSupplement bool
}

// Entity returns the step's entity name.
func (s Step) Entity() string { return s.Handler.Name() }

// Options returns the options this step runs with.
func (s Step) Options(base ImportOptions) ImportOptions {
	if s.ForceSupplement {
		return base.WithSupplement()
	}
	return base
}

// Command is one action selectable from the command line.
type Command struct {
	Name        string
	Description string
	Steps       []Step
}

// CommandTable maps action names to commands. It is built once at startup
// and read-only afterwards.
type CommandTable struct {
	commands map[string]Command
}

// NewCommandTable builds a table from cmds.
// Panics if two commands share a name or a command has no steps.
func NewCommandTable(cmds ...Command) *CommandTable {
	t := &CommandTable{commands: make(map[string]Command, len(cmds))}
	for _, c := range cmds {
		key := strings.ToLower(c.Name)
		if _, exists := t.commands[key]; exists {
			panic(fmt.Sprintf("command already registered: %s", c.Name))
		}
		if len(c.Steps) == 0 {
			panic(fmt.Sprintf("command has no steps: %s", c.Name))
		}
		t.commands[key] = c
	}
	return t
}

// Get returns the command for action, case-insensitively.
func (t *CommandTable) Get(action string) (Command, error) {
	c, ok := t.commands[strings.ToLower(strings.TrimSpace(action))]
	if !ok {
		return Command{}, errors.Wrapf(ErrUnknownAction, "%q", action)
	}
	return c, nil
}

// All returns every command sorted by name.
func (t *CommandTable) All() []Command {
	result := make([]Command, 0, len(t.commands))
	for _, c := range t.commands {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Names returns every action name sorted.
func (t *CommandTable) Names() []string {
	all := t.All()
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of commands.
func (t *CommandTable) Len() int {
	return len(t.commands)
}

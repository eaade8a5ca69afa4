package sim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidInput is returned when user input is not an integer. Engines are
// never called with unparsed input.
var ErrInvalidInput = errors.New("invalid input")

type Op int

const (
	OpAllocate Op = iota + 1
	OpRelease
	OpReset
	OpShow
)

var opNames = map[Op]string{
	OpAllocate: "alloc",
	OpRelease:  "free",
	OpReset:    "reset",
	OpShow:     "show",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Action is one discrete user request. Arg is the process size for
// OpAllocate and the block identifier for OpRelease.
type Action struct {
	Op  Op
	Arg int
}

func (a Action) String() string {
	switch a.Op {
	case OpAllocate, OpRelease:
		return fmt.Sprintf("%s %d", a.Op, a.Arg)
	}
	return a.Op.String()
}

// ParseSize parses a process size typed by the user.
func ParseSize(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: process size %q is not an integer", ErrInvalidInput, s)
	}
	return v, nil
}

// ParseIdentifier parses a block number or block size typed by the user.
func ParseIdentifier(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: block identifier %q is not an integer", ErrInvalidInput, s)
	}
	return v, nil
}

// ParseAction parses one command line: "alloc N", "free N", "reset" or "show".
func ParseAction(line string) (Action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Action{}, fmt.Errorf("%w: empty command", ErrInvalidInput)
	}

	var op Op
	switch strings.ToLower(fields[0]) {
	case "alloc", "allocate", "a":
		op = OpAllocate
	case "free", "dealloc", "deallocate", "release", "f":
		op = OpRelease
	case "reset":
		op = OpReset
	case "show", "snapshot", "s":
		op = OpShow
	default:
		return Action{}, fmt.Errorf("%w: unknown command %q", ErrInvalidInput, fields[0])
	}

	switch op {
	case OpAllocate, OpRelease:
		if len(fields) != 2 {
			return Action{}, fmt.Errorf("%w: %s takes exactly one argument", ErrInvalidInput, op)
		}
		parse := ParseSize
		if op == OpRelease {
			parse = ParseIdentifier
		}
		v, err := parse(fields[1])
		if err != nil {
			return Action{}, err
		}
		return Action{Op: op, Arg: v}, nil
	}
	if len(fields) != 1 {
		return Action{}, fmt.Errorf("%w: %s takes no arguments", ErrInvalidInput, op)
	}
	return Action{Op: op}, nil
}

// ParseScript reads one action per line. Blank lines and lines starting
// with '#' are skipped.
func ParseScript(r io.Reader) ([]Action, error) {
	var actions []Action
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		a, err := ParseAction(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		actions = append(actions, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return actions, nil
}

package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"nbclient/internal/errors"
)

// Verb identifies an operator command.
type Verb int

const (
	Connect Verb = iota + 1
	Read
	Write
	Stop
)

func (v Verb) String() string {
	switch v {
	case Connect:
		return "Connect"
	case Read:
		return "Read"
	case Write:
		return "Write"
	case Stop:
		return "Stop"
	}
	return "Unknown"
}

// Command is a parsed operator line.
type Command struct {
	Verb  Verb
	Host  string // Connect
	Port  string // Connect
	Count int    // Read
	Line  string // as typed
}

// Parse classifies line by the first character of its first word,
// ignoring case.
//
//	c <host> <port>   connect
//	r <count>         read count bytes
//	w                 write the configured message
//	x                 stop
//
// Errors are *errors.CommandError wrapping ErrUnknownCommand,
// ErrMissingArgument, ErrExtraArgument or ErrInvalidCount.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, errors.Command(line, errors.ErrUnknownCommand)
	}
	cmd := Command{Line: line}
	args := fields[1:]

	switch fields[0][0] {
	case 'c', 'C':
		switch {
		case len(args) < 2:
			return Command{}, errors.Command(line,
				fmt.Errorf("%w: connect needs <host> <port>", errors.ErrMissingArgument))
		case len(args) > 2:
			return Command{}, errors.Command(line,
				fmt.Errorf("%w: %q", errors.ErrExtraArgument, args[2]))
		}
		cmd.Verb, cmd.Host, cmd.Port = Connect, args[0], args[1]

	case 'r', 'R':
		switch {
		case len(args) < 1:
			return Command{}, errors.Command(line,
				fmt.Errorf("%w: read needs a byte count", errors.ErrMissingArgument))
		case len(args) > 1:
			return Command{}, errors.Command(line,
				fmt.Errorf("%w: %q", errors.ErrExtraArgument, args[1]))
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, errors.Command(line,
				fmt.Errorf("%w: %q is not a number", errors.ErrInvalidCount, args[0]))
		}
		cmd.Verb, cmd.Count = Read, n

	case 'w', 'W':
		cmd.Verb = Write

	case 'x', 'X':
		cmd.Verb = Stop

	default:
		return Command{}, errors.Command(line, errors.ErrUnknownCommand)
	}
	return cmd, nil
}

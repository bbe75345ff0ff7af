// Package flashkv load tests FlashKV, a Redis-like key-value server that
// speaks a line protocol over TCP.
//
// Each request opens a fresh connection, writes one command terminated by
// CRLF and reads a single reply line. Replies map onto the same outcome
// model as HTTP so the reducer and reports need no special casing:
//
//	-ERR ..., ERROR ..., ERR ...   500, failure
//	(nil), NIL, NOT FOUND           404, success
//	anything else                  200, success
//
// Dial, write and read failures carry no status code and are reported as
// transport errors.
package flashkv

import (
	"fmt"
	"strconv"
	"strings"
)

// verb describes the argument shape of a known command.
type verb struct {
	keyed  bool   // first argument is a key and may be randomized
	values bool   // arguments after the key are joined into one value
	needs  int    // required argument count
	usage  string // what is missing when fewer are given
}

var verbs = map[string]verb{
	"PING":    {},
	"GET":     {keyed: true, needs: 1, usage: "a key"},
	"SET":     {keyed: true, values: true, needs: 2, usage: "a key and value"},
	"DEL":     {keyed: true, needs: 1, usage: "a key"},
	"INCR":    {keyed: true, needs: 1, usage: "a key"},
	"DECR":    {keyed: true, needs: 1, usage: "a key"},
	"LPUSH":   {keyed: true, values: true, needs: 2, usage: "a key and value"},
	"LPOP":    {keyed: true, needs: 1, usage: "a key"},
	"EXISTS":  {keyed: true, needs: 1, usage: "a key"},
	"EXPIRE":  {keyed: true, needs: 2, usage: "a key and seconds"},
	"TTL":     {keyed: true, needs: 1, usage: "a key"},
	"KEYS":    {},
	"FLUSHDB": {},
}

var verbAliases = map[string]string{"DELETE": "DEL"}

// Command is one parsed FlashKV command. Unknown verbs are kept verbatim and
// sent as raw commands.
type Command struct {
	name string
	args []string
	raw  string
}

// ParseCommand parses s case-insensitively. Known verbs are checked for
// their required arguments; anything else becomes a raw command.
func ParseCommand(s string) (Command, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	name := strings.ToUpper(parts[0])
	if alias, ok := verbAliases[name]; ok {
		name = alias
	}
	shape, known := verbs[name]
	if !known {
		return Command{raw: s}, nil
	}

	rest := parts[1:]
	if len(rest) < shape.needs {
		return Command{}, fmt.Errorf("%s requires %s", name, shape.usage)
	}

	var args []string
	switch {
	case name == "KEYS":
		args = []string{"*"}
		if len(rest) > 0 {
			args[0] = rest[0]
		}
	case name == "EXPIRE":
		if _, err := strconv.ParseUint(rest[1], 10, 64); err != nil {
			return Command{}, fmt.Errorf("EXPIRE seconds %q is not a non-negative integer", rest[1])
		}
		args = []string{rest[0], rest[1]}
	case shape.values:
		args = []string{rest[0], strings.Join(rest[1:], " ")}
	case shape.needs > 0:
		args = []string{rest[0]}
	}
	return Command{name: name, args: args}, nil
}

// ParseCommands parses every entry, naming the first one that fails. An empty
// list yields a single PING.
func ParseCommands(list []string) ([]Command, error) {
	if len(list) == 0 {
		return []Command{{name: "PING"}}, nil
	}
	out := make([]Command, 0, len(list))
	for i, s := range list {
		cmd, err := ParseCommand(s)
		if err != nil {
			return nil, fmt.Errorf("command %d (%q): %w", i+1, s, err)
		}
		out = append(out, cmd)
	}
	return out, nil
}

// Name returns the upper-case verb, or RAW for unrecognized commands.
func (c Command) Name() string {
	if c.raw != "" {
		return "RAW"
	}
	return c.name
}

// Key returns the key argument, if the command takes one.
func (c Command) Key() string {
	if c.raw != "" || !verbs[c.name].keyed {
		return ""
	}
	return c.args[0]
}

// WithKey returns a copy addressing key instead. Commands without a key are
// returned unchanged.
func (c Command) WithKey(key string) Command {
	if c.Key() == "" {
		return c
	}
	args := append([]string(nil), c.args...)
	args[0] = key
	return Command{name: c.name, args: args}
}

// Wire returns the command as sent on the connection, CRLF terminated.
func (c Command) Wire() string {
	if c.raw != "" {
		switch {
		case strings.HasSuffix(c.raw, "\r\n"):
			return c.raw
		case strings.HasSuffix(c.raw, "\n"):
			return strings.TrimRight(c.raw, " \t\r\n") + "\r\n"
		default:
			return c.raw + "\r\n"
		}
	}
	if len(c.args) == 0 {
		return c.name + "\r\n"
	}
	return c.name + " " + strings.Join(c.args, " ") + "\r\n"
}

func (c Command) String() string {
	return strings.TrimRight(c.Wire(), "\r\n")
}

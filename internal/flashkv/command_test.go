package flashkv

import (
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantWire string
		wantKey  string
	}{
		{"PING", "PING", "PING\r\n", ""},
		{"ping", "PING", "PING\r\n", ""},
		{"get KEY", "GET", "GET KEY\r\n", "KEY"},
		{"SET mykey myvalue", "SET", "SET mykey myvalue\r\n", "mykey"},
		{"SET mykey hello   world", "SET", "SET mykey hello world\r\n", "mykey"},
		{"delete mykey", "DEL", "DEL mykey\r\n", "mykey"},
		{"LPUSH queue a b", "LPUSH", "LPUSH queue a b\r\n", "queue"},
		{"EXPIRE mykey 3600", "EXPIRE", "EXPIRE mykey 3600\r\n", "mykey"},
		{"KEYS", "KEYS", "KEYS *\r\n", ""},
		{"KEYS user:*", "KEYS", "KEYS user:*\r\n", ""},
		{"FLUSHDB", "FLUSHDB", "FLUSHDB\r\n", ""},
		{"CUSTOMCMD arg1 arg2", "RAW", "CUSTOMCMD arg1 arg2\r\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmd, err := ParseCommand(tt.in)
			if err != nil {
				t.Fatalf("ParseCommand(%q) error = %v", tt.in, err)
			}
			if cmd.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", cmd.Name(), tt.wantName)
			}
			if cmd.Wire() != tt.wantWire {
				t.Errorf("Wire() = %q, want %q", cmd.Wire(), tt.wantWire)
			}
			if cmd.Key() != tt.wantKey {
				t.Errorf("Key() = %q, want %q", cmd.Key(), tt.wantKey)
			}
		})
	}
}

func TestParseCommandMissingArgs(t *testing.T) {
	tests := map[string]string{
		"GET":           "GET requires a key",
		"SET key":       "SET requires a key and value",
		"LPUSH list":    "LPUSH requires a key and value",
		"EXPIRE key":    "EXPIRE requires a key and seconds",
		"EXPIRE key -1": "not a non-negative integer",
		"TTL":           "TTL requires a key",
		"   ":           "empty command",
	}
	for in, want := range tests {
		_, err := ParseCommand(in)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("ParseCommand(%q) error = %v, want containing %q", in, err, want)
		}
	}
}

func TestRawWireTerminator(t *testing.T) {
	tests := map[string]string{
		"HELLO":       "HELLO\r\n",
		"HELLO\n":     "HELLO\r\n",
		"HELLO  \n":   "HELLO\r\n",
		"HELLO\r\n":   "HELLO\r\n",
		"AUTH secret": "AUTH secret\r\n",
	}
	for in, want := range tests {
		cmd, err := ParseCommand(in)
		if err != nil {
			t.Fatalf("ParseCommand(%q) error = %v", in, err)
		}
		if got := cmd.Wire(); got != want {
			t.Errorf("Wire(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWithKey(t *testing.T) {
	set, _ := ParseCommand("SET original some value")
	got := set.WithKey("prefix:7")
	if got.Wire() != "SET prefix:7 some value\r\n" {
		t.Errorf("WithKey on SET = %q", got.Wire())
	}
	if set.Key() != "original" {
		t.Errorf("WithKey mutated the receiver: key = %q", set.Key())
	}

	for _, in := range []string{"PING", "KEYS user:*", "FLUSHDB", "CUSTOM thing"} {
		cmd, _ := ParseCommand(in)
		if got := cmd.WithKey("prefix:1"); got.Wire() != cmd.Wire() {
			t.Errorf("WithKey changed keyless %q to %q", in, got.Wire())
		}
	}
}

func TestParseCommands(t *testing.T) {
	cmds, err := ParseCommands(nil)
	if err != nil || len(cmds) != 1 || cmds[0].Name() != "PING" {
		t.Fatalf("ParseCommands(nil) = %v, %v; want a single PING", cmds, err)
	}

	_, err = ParseCommands([]string{"PING", "GET"})
	if err == nil || !strings.Contains(err.Error(), "command 2") {
		t.Fatalf("ParseCommands() error = %v, want it to name command 2", err)
	}
}

func TestClassifyReply(t *testing.T) {
	tests := []struct {
		reply  string
		status int
		ok     bool
	}{
		{"PONG", StatusOK, true},
		{"OK", StatusOK, true},
		{"42", StatusOK, true},
		{"(nil)", StatusNotFound, true},
		{"nil", StatusNotFound, true},
		{"key not found", StatusNotFound, true},
		{"-ERR unknown command", StatusError, false},
		{"ERROR wrong type", StatusError, false},
		{"err syntax", StatusError, false},
		{"-1", StatusError, false},
	}
	for _, tt := range tests {
		status, ok := ClassifyReply(tt.reply)
		if status != tt.status || ok != tt.ok {
			t.Errorf("ClassifyReply(%q) = %d, %v; want %d, %v", tt.reply, status, ok, tt.status, tt.ok)
		}
	}
}

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	testlogr "github.com/sss-org/sss-engine/internal/testutils/logger"
	"github.com/sss-org/sss-engine/types"
)

/*
runApp executes the sss application with "args" and home directory "home",
"stdin" is the content of standard input. Returns whatever the command
wrote to stdout.
*/
func runApp(t *testing.T, home, stdin string, args ...string) (string, error) {
	t.Helper()
	app := New(testlogr.LoggerBuilder(t))
	out := &bytes.Buffer{}
	app.baseCmd.SetOut(out)
	app.baseCmd.SetIn(strings.NewReader(stdin))
	app.baseCmd.SetArgs(append(args, "--home", home))
	err := app.Execute(context.Background())
	return out.String(), err
}

func commandJSON(t *testing.T, cmdType string, mint, caller types.Identity, attr any) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"type":       cmdType,
		"mint":       mint,
		"caller":     caller,
		"attributes": attr,
	})
	require.NoError(t, err)
	return string(b)
}

func decodeOutput[T any](t *testing.T, out string) *T {
	t.Helper()
	v := new(T)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
	return v
}

type receiptOutput struct {
	Command string `json:"command"`
	Events  []struct {
		Type string `json:"type"`
	} `json:"events"`
}

func eventTypes(r *receiptOutput) []string {
	var names []string
	for _, e := range r.Events {
		names = append(names, e.Type)
	}
	return names
}

func TestApp_help(t *testing.T) {
	out, err := runApp(t, t.TempDir(), "", "--help")
	require.NoError(t, err)
	for _, name := range []string{"serve", "exec", "query", "events", "commands"} {
		require.Contains(t, out, fmt.Sprintf("  %s ", name))
	}
}

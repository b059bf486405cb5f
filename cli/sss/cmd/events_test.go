package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	test "github.com/sss-org/sss-engine/internal/testutils"
	"github.com/sss-org/sss-engine/types"
)

type eventsOutput struct {
	Events []struct {
		Seq     uint64         `json:"seq"`
		Type    string         `json:"type"`
		Mint    types.Identity `json:"mint"`
		Command string         `json:"command"`
	} `json:"events"`
	LastSeq uint64 `json:"last_seq"`
}

func TestEvents(t *testing.T) {
	home := t.TempDir()
	mint, authority, alice := test.RandomIdentity(), test.RandomIdentity(), test.RandomIdentity()

	_, err := runApp(t, home, "", "events")
	require.ErrorContains(t, err, "opening state database", "database is not created by read commands")

	out, err := runApp(t, home, commandJSON(t, types.CmdInitialize, mint, authority, map[string]any{"name": "USD", "symbol": "USD"}), "exec")
	require.NoError(t, err)
	initEvents := len(decodeOutput[receiptOutput](t, out).Events)
	_, err = runApp(t, home, commandJSON(t, types.CmdMint, mint, authority, map[string]any{"recipient": alice, "amount": 10}), "exec")
	require.NoError(t, err)
	_, err = runApp(t, home, commandJSON(t, types.CmdPause, mint, authority, nil), "exec")
	require.NoError(t, err)
	total := uint64(initEvents + 2)

	out, err = runApp(t, home, "", "events")
	require.NoError(t, err)
	page := decodeOutput[eventsOutput](t, out)
	require.Equal(t, total, page.LastSeq)
	require.Len(t, page.Events, int(total))
	require.Equal(t, types.EventStablecoinInitialized, page.Events[0].Type)
	require.Equal(t, mint, page.Events[0].Mint)
	for i, ev := range page.Events {
		require.EqualValues(t, i+1, ev.Seq)
	}

	out, err = runApp(t, home, "", "events", "--from", "2", "--limit", "1")
	require.NoError(t, err)
	page = decodeOutput[eventsOutput](t, out)
	require.Len(t, page.Events, 1)
	require.EqualValues(t, 2, page.Events[0].Seq)

	out, err = runApp(t, home, "", "events", "--from", "100")
	require.NoError(t, err)
	page = decodeOutput[eventsOutput](t, out)
	require.Empty(t, page.Events)
	require.Equal(t, total, page.LastSeq)

	out, err = runApp(t, home, "", "events", "--from", "0")
	require.NoError(t, err)
	page = decodeOutput[eventsOutput](t, out)
	require.Len(t, page.Events, int(total))
	last := page.Events[len(page.Events)-1]
	require.Equal(t, types.EventStablecoinPaused, last.Type)
	require.Equal(t, types.CmdPause, last.Command)
}

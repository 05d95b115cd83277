package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const cliEventLog = `RTCStatsDump
["getStats","pc1",{"a":{"type":"inbound-rtp","kind":"audio","ssrc":5,"timestamp":1000,"jitter":0.08,"packetsLost":4,"packetsReceived":96}}]
["getStats","pc1",{"a":{"type":"inbound-rtp","kind":"audio","ssrc":5,"timestamp":2000,"jitter":0.08,"packetsLost":8,"packetsReceived":192}}]
`

func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// runApp runs the CLI with output captured. The config path points to a
// missing file so built-in defaults apply.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:     "rtcdiag",
		Writer:   &out,
		Reader:   strings.NewReader(cliEventLog),
		Flags:    []cli.Flag{&cli.BoolFlag{Name: "debug"}, &cli.StringFlag{Name: configFlagName}},
		Commands: []*cli.Command{analyzeCommand(), detectCommand()},
	}
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	err := app.Run(append([]string{"rtcdiag", "--config", missing}, args...))
	return out.String(), err
}

func TestAnalyze_TextReport(t *testing.T) {
	out, err := runApp(t, "analyze", writeDump(t, cliEventLog))
	require.NoError(t, err)

	assert.Contains(t, out, "Format:")
	assert.Contains(t, out, "event-log")
	assert.Contains(t, out, "Top issues:")
	assert.Contains(t, out, "track:inbound:5")
	assert.Contains(t, out, "packet-loss-pct")
}

func TestAnalyze_JSONFromStdin(t *testing.T) {
	out, err := runApp(t, "analyze", "--output", "json", "-")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "event-log", decoded["format"])
	assert.Nil(t, decoded["session"])
	assert.Contains(t, decoded, "summary")
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := runApp(t, "analyze", "--output", "xml", writeDump(t, cliEventLog))
	assert.ErrorContains(t, err, "unsupported output")

	_, err = runApp(t, "analyze", "--format", "pcap", writeDump(t, cliEventLog))
	assert.ErrorContains(t, err, "unsupported dump format")

	_, err = runApp(t, "analyze", "--format", "snapshot", writeDump(t, cliEventLog))
	assert.ErrorContains(t, err, "not in the expected format")

	_, err = runApp(t, "analyze")
	assert.ErrorContains(t, err, "exactly one")

	_, err = runApp(t, "analyze", writeDump(t, "garbage"))
	assert.Error(t, err)
}

func TestDetect(t *testing.T) {
	out, err := runApp(t, "detect", writeDump(t, `{"PeerConnections":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "snapshot\n", out)
}

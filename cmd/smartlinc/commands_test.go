package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMissingArgumentsPrintUsage(t *testing.T) {
	out, err := execute()
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")

	out, err = execute("11F004")
	require.NoError(t, err)
	assert.Contains(t, out, "smartlinc ADDRESS 0|1")
}

func TestBadOnOffArgument(t *testing.T) {
	_, err := execute("11F004", "maybe")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smartlinc.yaml")
	_, err := execute("config", "init", "--config", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_status_attempts")
	assert.Contains(t, string(data), "reply_infix")
}

func TestConfigInitHelpExplainsReplyInfix(t *testing.T) {
	out, err := execute("config", "init", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "reply_infix: 151CAC2B")
}

func TestStatusWithoutGatewayHost(t *testing.T) {
	t.Setenv("SMARTLINC_GATEWAY_HOST", "")
	path := filepath.Join(t.TempDir(), "empty.yaml")
	_, err := execute("status", "11F004", "--config", path)
	assert.ErrorContains(t, err, "gateway host is not configured")
}

func TestParseOnOff(t *testing.T) {
	for in, want := range map[string]bool{"1": true, "on": true, "ON": true, "0": false, "off": false} {
		got, err := parseOnOff(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseOnOff("2")
	assert.Error(t, err)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	config := filepath.Join(t.TempDir(), "gomck.yaml")
	cmd.SetArgs(append([]string{"--config", config, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVerifyCmd(t *testing.T) {
	tests := []struct {
		args     []string
		expected string
	}{
		{args: []string{"verify", "latch", "AG![x == 0]"}, expected: "Property does not hold"},
		{args: []string{"verify", "latch-zero", "AG![x == 0]"}, expected: "Property holds"},
		{args: []string{"verify", "counter", "AG![value <= 9]"}, expected: "Property holds"},
		{args: []string{"verify", "counter", "--bound", "5", "AG![value <= 3]"}, expected: "Property does not hold"},
	}
	for _, test := range tests {
		out, err := execute(t, test.args...)
		require.NoError(t, err, strings.Join(test.args, " "))
		if !strings.HasPrefix(out, test.expected) {
			t.Errorf("Expected %v to print %q. Got: %q", test.args, test.expected, out)
		}
		assert.Contains(t, out, "Refinements:")
	}
}

func TestVerifyCmdErrors(t *testing.T) {
	tests := []struct {
		args     []string
		contains string
	}{
		{args: []string{"verify", "toaster", "AG![x == 0]"}, contains: "unknown system"},
		{args: []string{"verify", "latch", "AG![x =="}, contains: "syntax error"},
		{args: []string{"verify", "counter", "--bound", "0", "AG![value <= 9]"}, contains: "divisor of zero"},
		{args: []string{"verify", "latch"}, contains: "accepts 2 arg(s)"},
	}
	for _, test := range tests {
		_, err := execute(t, test.args...)
		require.Error(t, err, strings.Join(test.args, " "))
		assert.Contains(t, err.Error(), test.contains)
	}
}

func TestVerifyCmdBounded(t *testing.T) {
	t.Setenv("GOMCK_MAX_REFINEMENTS", "0")
	_, err := execute(t, "verify", "latch", "AG![x == 0]")
	assert.ErrorContains(t, err, "no conclusion after 0 refinements")
}

func TestVerifyCmdDot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "space.dot")
	_, err := execute(t, "verify", "--dot", path, "latch", "AG![x == 0]")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "digraph space {"))
}

func TestSystemsCmd(t *testing.T) {
	out, err := execute(t, "systems")
	require.NoError(t, err)
	for _, name := range systemNames() {
		assert.Contains(t, out, name)
	}
}

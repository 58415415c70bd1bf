package main

import (
	"bytes"
	"testing"

	"marketsync-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestRunsRejectsUnknownExchange(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"runs", "LSE"})

	err := rootCmd.Execute()
	require.ErrorIs(t, err, domain.ErrInvalidExchange)
}

func TestErrText(t *testing.T) {
	require.Equal(t, "-", errText(nil))
	msg := "timeout"
	require.Equal(t, "timeout", errText(&msg))
}

package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LynnColeArt/stream"
)

func TestSweepLength(t *testing.T) {
	assert.Equal(t, 1024, sweepLength(8, stream.Float64))
	assert.Equal(t, 2048, sweepLength(8, stream.Float32))
	assert.Equal(t, 1_048_576, sweepLength(8192, stream.Float64))
}

func TestDefaultSweepSizes(t *testing.T) {
	assert.Equal(t, []int{8, 16, 32, 40, 48, 64, 80, 112, 128, 256, 512, 1024, 2048, 3072, 8192}, DefaultSweepKiB)
}

func newTestSweepCommand(t *testing.T, opts *SweepOptions, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{Use: "sweep"}
	opts.Flags.register(cmd.Flags(), false)
	cmd.Flags().IntSliceVar(&opts.Sizes, "sizes", DefaultSweepKiB, "")
	require.NoError(t, cmd.Flags().Parse(args))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	return cmd, &out
}

func TestSweepCommandJSON(t *testing.T) {
	opts := &SweepOptions{
		RootOptions: &RootOptions{Format: "json"},
		RunIDs:      NewFixedGenerator("sweep-1"),
	}
	cmd, out := newTestSweepCommand(t, opts, "--sizes", "8,16,64", "--reps", "3")

	require.NoError(t, runSweep(opts, cmd))

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Rows []struct {
				KiB      int `json:"kib"`
				Elements int `json:"elements"`
				Result   struct {
					Validation struct {
						Passed bool `json:"passed"`
					} `json:"validation"`
				} `json:"result"`
			} `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Rows, 3)
	assert.Equal(t, 8, resp.Data.Rows[0].KiB)
	assert.Equal(t, 1024, resp.Data.Rows[0].Elements)
	assert.Equal(t, 8192, resp.Data.Rows[2].Elements)
	for _, row := range resp.Data.Rows {
		assert.True(t, row.Result.Validation.Passed)
	}
}

func TestSweepCommandText(t *testing.T) {
	opts := &SweepOptions{
		RootOptions: &RootOptions{Format: "text"},
		RunIDs:      NewFixedGenerator("sweep-2"),
	}
	cmd, out := newTestSweepCommand(t, opts, "--sizes", "32", "--reps", "2", "--precision", "float32")

	require.NoError(t, runSweep(opts, cmd))
	assert.Contains(t, out.String(), "STREAM working-set sweep, run sweep-2")
	assert.Contains(t, out.String(), "8,192")
}

func TestSweepCommandRejectsBadConfig(t *testing.T) {
	opts := &SweepOptions{RootOptions: &RootOptions{Format: "text"}}
	cmd, _ := newTestSweepCommand(t, opts, "--sizes", "8", "--reps", "1")

	err := runSweep(opts, cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

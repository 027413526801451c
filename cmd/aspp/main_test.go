package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupCLIEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"ASPP_DATASET", "ASPP_OUTPUT_DIR", "ASPP_WORKERS", "ASPP_FORMAT", "ASPP_LOG_LEVEL", "ASPP_LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aspp.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func writeRecordings(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("raw_accelerometer_signal,car,phone,segment_id,vel [km/h] (r),ZWAUN_15,account,note\n")
	for s, car := range []string{"Opel Van", "VW Small Van"} {
		for seg := 1; seg <= 3; seg++ {
			amp := float64(seg) * (1 + 0.1*float64(s))
			fmt.Fprintf(&b, "\"%.2f,%.2f,%.2f,%.2f\",%s,Pixel 7,%d,30,%d,Mounting Type Test,mount-%d\n",
				amp, -amp, amp, -amp/2, car, seg, seg+1, s)
		}
	}
	path := filepath.Join(t.TempDir(), "recordings.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestGridCommandCountsPipelines(t *testing.T) {
	setupCLIEnv(t)
	cfg := writeConfig(t, `
[grid]
operations = ["avg-3", "rmp-5"]
aggregations = ["RMS", "MAX"]
complexities = [0, 1, 2]
`)
	out, err := runCLI(t, "--config", cfg, "grid", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "2 operations x 2 aggregations")
	assert.Contains(t, out, "total")
	assert.Contains(t, out, "14")
	assert.Contains(t, out, "raw-MAX\n")
	assert.Contains(t, out, "rmp5avg3-RMS\n")
	assert.Equal(t, 14, strings.Count(out, "-RMS\n")+strings.Count(out, "-MAX\n"))
}

func TestConfigInitAndShow(t *testing.T) {
	setupCLIEnv(t)
	target := filepath.Join(t.TempDir(), "aspp.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote sample configuration")

	_, err = runCLI(t, "config", "init", "--path", target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, err = runCLI(t, "--config", target, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# loaded from "+target)
	assert.Contains(t, out, "primary_source")
	assert.Contains(t, out, "ZWAUN_15")
}

func TestConfigShowRejectsInvalidLogFlag(t *testing.T) {
	setupCLIEnv(t)
	_, err := runCLI(t, "--log-level", "loud", "config", "show")
	require.Error(t, err)
}

func TestEvaluateCommand(t *testing.T) {
	setupCLIEnv(t)
	cfg := writeConfig(t, `
[grid]
operations = ["avg-3"]
aggregations = ["RMS", "STD"]
complexities = [0, 1]

[evaluation]
metrics = false

[logging]
level = "warn"
format = "json"
`)
	outDir := filepath.Join(t.TempDir(), "run")
	out, err := runCLI(t, "--config", cfg, "evaluate",
		"--dataset", writeRecordings(t),
		"--out", outDir,
		"--format", "csv",
		"--workers", "2",
		"--top", "3",
		"--quiet",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Scored 4 features")
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "Run:")
	assert.NotContains(t, out, "Metrics:")

	for _, name := range []string{"features.csv", "scores.csv", "summary.md", "manifest.json"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestWindshieldCommand(t *testing.T) {
	setupCLIEnv(t)
	cfg := writeConfig(t, `
[logging]
level = "error"

[[windshield.experiments]]
name = "Mounting Type"
accounts = ["Mounting Type Test"]
`)
	outDir := filepath.Join(t.TempDir(), "windshield")
	out, err := runCLI(t, "--config", cfg, "windshield", "--dataset", writeRecordings(t), "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Mounting Type")
	assert.Contains(t, out, "avg3avg3-RMS")
	_, err = os.Stat(filepath.Join(outDir, "windshield_scores.json"))
	assert.NoError(t, err)
}

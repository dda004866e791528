package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExperimentConfig(t *testing.T, baseDir string) string {
	t.Helper()
	content := `
base_dir: ` + baseDir + `
monitored: [training, processing]
hyperparameters:
  training:
    batch_size: 128
    epochs: 12
    learning-rate: 0.008
  processing:
    width: 128
    height: 128
`
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestIDCommand(t *testing.T) {
	cfgPath := writeExperimentConfig(t, filepath.Join(t.TempDir(), "never-created"))

	out, err := runCommand(t, "id", "-c", cfgPath)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^exp(-\d{8}){2}\n$`), out)
}

func TestIDCommandDeterministic(t *testing.T) {
	cfgPath := writeExperimentConfig(t, filepath.Join(t.TempDir(), "never-created"))

	first, err := runCommand(t, "id", "-c", cfgPath)
	require.NoError(t, err)
	second, err := runCommand(t, "id", "-c", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPrepareCommand(t *testing.T) {
	base := filepath.Join(t.TempDir(), "experiments")
	cfgPath := writeExperimentConfig(t, base)

	out, err := runCommand(t, "prepare", "-c", cfgPath)
	require.NoError(t, err)

	runDir := strings.TrimSpace(out)
	assert.DirExists(t, runDir)
	assert.FileExists(t, filepath.Join(runDir, "hyperparameters.json"))
	assert.DirExists(t, filepath.Join(runDir, "models"))
}

func TestPrepareCommandMissingConfig(t *testing.T) {
	_, err := runCommand(t, "prepare", "-c", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestReportCommand(t *testing.T) {
	runDir := t.TempDir()
	csv := "epoch,loss\n0,0.5\n1,0.125\n2,0.25\n"
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "training-logs.csv"), []byte(csv), 0o644))

	out, err := runCommand(t, "report", runDir, "--metric", "loss")
	require.NoError(t, err)
	assert.Contains(t, out, `"loss":0.125`)
	assert.Contains(t, out, `"epoch":1`)
}

func TestResumeCommandUnknownRun(t *testing.T) {
	cfgPath := writeExperimentConfig(t, filepath.Join(t.TempDir(), "experiments"))
	_, err := runCommand(t, "resume", "-c", cfgPath, "exp-00000000", "run--20-03-03--15-52")
	assert.Error(t, err)
}

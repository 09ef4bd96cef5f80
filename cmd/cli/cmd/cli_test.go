package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bomcost/core/bom"
	"bomcost/core/diff"
	"bomcost/internal/errors"
)

const chairDef = `
product "Chair" {
  offset = 10
  material "Wood" {
    cost = 20
    xor  = ["Leg"]
  }
  material "Metal Leg" {
    cost = 5
    xor  = ["Leg"]
  }
}
`

// setupCLI writes a config that keeps workspaces in a temp directory
func setupCLI(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()

	cfg := map[string]interface{}{
		"workspace": map[string]string{"name": "test", "backend": "file", "path": filepath.Join(dir, "ws")},
		"logging":   map[string]string{"level": "error", "format": "json", "output": filepath.Join(dir, "log")},
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), data, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chair.bom.hcl"), []byte(chairDef), 0644))
	return dir
}

func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cfgFile, verbose, outputFormat, workspaceName = "", false, "", ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dir, "config.json")}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCostCommand(t *testing.T) {
	dir := setupCLI(t)

	out, err := runCLI(t, dir, "cost", "--format", "json", filepath.Join(dir, "chair.bom.hcl"))
	require.NoError(t, err)

	var report struct {
		Total string `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "10.00", report.Total)
}

func TestCostCommandMissingPath(t *testing.T) {
	dir := setupCLI(t)
	_, err := runCLI(t, dir, "cost", filepath.Join(dir, "absent.bom.hcl"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestWorkspaceLifecycle(t *testing.T) {
	dir := setupCLI(t)

	out, err := runCLI(t, dir, "workspace", "import", filepath.Join(dir, "chair.bom.hcl"))
	require.NoError(t, err)
	assert.Contains(t, out, "imported Chair (uid 0)")

	// Metal Leg is uid 2
	out, err = runCLI(t, dir, "workspace", "select", "0", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Chair now uses Metal Leg; total 15.00")

	out, err = runCLI(t, dir, "workspace", "duplicate", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "uid 0 -> 3")

	_, err = runCLI(t, dir, "workspace", "select", "3", "1")
	require.NoError(t, err)
	out, err = runCLI(t, dir, "workspace", "diff", "0", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Wood")
	assert.Contains(t, out, "15.00")
	assert.Contains(t, out, "30.00")

	out, err = runCLI(t, dir, "workspace", "show", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "## Chair (uid 3)")
	assert.Contains(t, out, "**Grand total:** 45.00")

	// a second import keeps issuing fresh uids
	out, err = runCLI(t, dir, "workspace", "import", filepath.Join(dir, "chair.bom.hcl"))
	require.NoError(t, err)
	assert.Contains(t, out, "imported Chair (uid 4)")

	out, err = runCLI(t, dir, "workspace", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "test")

	_, err = runCLI(t, dir, "workspace", "delete")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "workspace", "show")
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestWorkspaceSelectPrecondition(t *testing.T) {
	dir := setupCLI(t)
	src := `product "Desk" {
  material "Oak" { cost = 3 }
}`
	path := filepath.Join(dir, "desk.bom.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	_, err := runCLI(t, dir, "workspace", "import", path)
	require.NoError(t, err)

	_, err = runCLI(t, dir, "workspace", "select", "0", "1")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypePrecondition))

	_, err = runCLI(t, dir, "workspace", "select", "0", "9")
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestVersionCommand(t *testing.T) {
	dir := setupCLI(t)
	out, err := runCLI(t, dir, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bomcost version "+version)
}

func TestPrintDiffShowsOffsetChange(t *testing.T) {
	set := bom.NewProductSet("t")
	p := set.CreateProduct("Box")
	p.SetCostOffset(4)
	m := set.CreateMaterial("Card")
	m.SetCost(1)
	p.AddMaterials(m)
	dup := set.DuplicateProduct(p)
	dup.SetCostOffset(6.5)

	var buf bytes.Buffer
	printDiff(&buf, diff.Compare(p.Breakdown(), dup.Breakdown()))
	out := buf.String()
	assert.Contains(t, out, "(offset)")
	assert.Contains(t, out, "4.00")
	assert.Contains(t, out, "6.50")
	assert.Contains(t, out, "2.50")

	buf.Reset()
	printDiff(&buf, diff.Compare(p.Breakdown(), p.Breakdown()))
	assert.NotContains(t, buf.String(), "(offset)")
}

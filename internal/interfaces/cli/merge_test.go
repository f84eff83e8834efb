package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemScreen/internal/infrastructure/maefile"
	"github.com/turtacn/ChemScreen/pkg/errors"
)

const coreFile = `structure {
  s_m_title core
  s_m_entry_name core
  b_cs_first_match_only 1
  atoms 4 {
    P3 0.000000 0.000000 0.000000
    RH 2.000000 0.000000 0.000000
    P3 4.000000 0.000000 0.000000
    CL1 2.000000 -1.500000 0.000000
  }
  bonds 3 {
    1 2 1
    2 3 1
    2 4 1
  }
}
`

const ligandFile = `structure {
  s_m_title lig
  s_m_entry_name lig
  s_cs_pattern "P[Rh]P"
  b_cs_first_match_only 1
  atoms 4 {
    P3 0.000000 0.000000 0.000000
    RH 2.000000 0.000000 0.000000
    P3 4.000000 0.000000 0.000000
    C3 0.000000 1.000000 0.000000
  }
  bonds 3 {
    1 2 1 i_cs_rca4_1=0 i_cs_rca4_2=0
    2 3 1 i_cs_rca4_1=0 i_cs_rca4_2=0
    1 4 1 i_cs_rca4_1=0 i_cs_rca4_2=0
  }
}
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestMergeCmd_TwoGroupsToFile(t *testing.T) {
	dir := t.TempDir()
	cores := writeFixture(t, dir, "cores.mae", coreFile)
	ligands := writeFixture(t, dir, "ligands.mae", ligandFile)
	out := filepath.Join(dir, "merged.mae")

	err := execute(t, "merge", "-g", cores, "-g", ligands, "-o", out)
	require.NoError(t, err)

	merged, err := maefile.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "core_lig", merged[0].Title())
	assert.Equal(t, 5, merged[0].AtomCount(), "4 + 4 - 3 common atoms")
}

func TestMergeCmd_DirectoryOutput(t *testing.T) {
	dir := t.TempDir()
	cores := writeFixture(t, dir, "cores.mae", coreFile)
	ligands := writeFixture(t, dir, "ligands.mae", ligandFile)
	outDir := filepath.Join(dir, "out")

	err := execute(t, "merge", "-g", cores, "-g", ligands, "-d", outDir)
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "core_lig.mae", entries[0].Name())
}

func TestMergeCmd_CommaSeparatedGroupFiles(t *testing.T) {
	dir := t.TempDir()
	cores := writeFixture(t, dir, "cores.mae", coreFile)
	ligA := writeFixture(t, dir, "a.mae", ligandFile)
	ligB := writeFixture(t, dir, "b.mae", ligandFile)
	out := filepath.Join(dir, "merged.mae")

	err := execute(t, "merge", "-g", cores, "-g", ligA+","+ligB, "-o", out)
	require.NoError(t, err)

	merged, err := maefile.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, merged, 2, "one output per ligand in the group")
}

func TestMergeCmd_SingleGroupPassesThrough(t *testing.T) {
	dir := t.TempDir()
	cores := writeFixture(t, dir, "cores.mae", coreFile)
	out := filepath.Join(dir, "out.mae")

	err := execute(t, "merge", "-g", cores, "-o", out)
	require.NoError(t, err)

	merged, err := maefile.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "core", merged[0].Title())
}

func TestMergeCmd_NoPatternMatchFails(t *testing.T) {
	dir := t.TempDir()
	cores := writeFixture(t, dir, "cores.mae", coreFile)
	// A ligand whose pattern cannot match the core.
	bad := writeFixture(t, dir, "bad.mae",
		"structure {\n  s_m_title bad\n  s_m_entry_name bad\n  s_cs_pattern N\n"+
			"  atoms 1 {\n    N3 0.000000 0.000000 0.000000\n  }\n  bonds 0 {\n  }\n}\n")

	err := execute(t, "merge", "-g", cores, "-g", bad, "-o", filepath.Join(dir, "o.mae"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNoPatternMatch))
	assert.Equal(t, 3, errors.ExitCodeForCode(errors.GetCode(err)))
}

func TestMergeCmd_MissingInputFile(t *testing.T) {
	dir := t.TempDir()
	err := execute(t, "merge", "-g", filepath.Join(dir, "absent.mae"),
		"-o", filepath.Join(dir, "o.mae"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeFileParse))
}

func TestMergeCmd_GroupFlagRequired(t *testing.T) {
	err := execute(t, "merge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group")
}

func TestMergeCmd_OutputFlagsMutuallyExclusive(t *testing.T) {
	dir := t.TempDir()
	cores := writeFixture(t, dir, "cores.mae", coreFile)

	err := execute(t, "merge", "-g", cores, "-o", "x.mae", "-d", "y")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestMergeCmd_MiniWithoutCommandFails(t *testing.T) {
	dir := t.TempDir()
	cores := writeFixture(t, dir, "cores.mae", coreFile)

	err := execute(t, "merge", "-g", cores, "-m", "-o", filepath.Join(dir, "o.mae"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestMergeCmd_MiniRunsConfiguredCommand(t *testing.T) {
	dir := t.TempDir()
	cores := writeFixture(t, dir, "cores.mae", coreFile)
	ligands := writeFixture(t, dir, "ligands.mae", ligandFile)
	out := filepath.Join(dir, "merged.mae")

	// "true" leaves the scratch file unchanged, so the merged structures
	// pass through the minimiser boundary intact.
	t.Setenv("CHEMSCREEN_MINIMIZE_COMMAND", "true")

	err := execute(t, "merge", "-g", cores, "-g", ligands, "-m", "-o", out)
	require.NoError(t, err)

	merged, err := maefile.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "core_lig", merged[0].Title())
}

package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/csvx/internal/engine"
)

const sampleCSV = `name,city,age
ada,berlin,36
bob,paris,41
cyn,berlin,29
dee,tokyo,52
`

// resetState restores package-level flag state between executions; cobra
// keeps flag values across Execute calls otherwise.
func resetState(t *testing.T) {
	t.Helper()
	interactive = false
	outputFormat = ""
	searchTerm = ""
	whereExpr = ""
	themeName = ""
	configFile = ""
	keymapName = ""
	noColor = false
	outWidth = 0
	pageSizeFlag = 0
	logVerbosity = 0
	limitRecords = 0
	offsetRecords = 0
	tailRecords = 0
	sortFlag = sortSpecValue{}

	prevTerm, prevPiped := stdoutIsTerminal, stdinIsPiped
	stdoutIsTerminal = func() bool { return false }
	stdinIsPiped = func() bool { return false }
	t.Cleanup(func() {
		stdoutIsTerminal = prevTerm
		stdinIsPiped = prevPiped
	})
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetState(t)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSortFlagParsing(t *testing.T) {
	tests := []struct {
		in      string
		col     string
		dir     engine.Direction
		wantErr bool
	}{
		{in: "age", col: "age", dir: engine.Ascending},
		{in: "age:asc", col: "age", dir: engine.Ascending},
		{in: "age:desc", col: "age", dir: engine.Descending},
		{in: "age:DESC", col: "age", dir: engine.Descending},
		{in: "age:descending", col: "age", dir: engine.Descending},
		{in: "age:sideways", wantErr: true},
		{in: ":asc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var v sortSpecValue
			err := v.Set(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, v.spec)
			assert.Equal(t, tt.col, v.spec.Column)
			assert.Equal(t, tt.dir, v.spec.Direction)
		})
	}
}

func TestSortFlagString(t *testing.T) {
	var v sortSpecValue
	assert.Empty(t, v.String())
	require.NoError(t, v.Set("age:desc"))
	assert.Equal(t, "age:desc", v.String())
}

func TestIsCSVFile(t *testing.T) {
	assert.True(t, isCSVFile("data.csv"))
	assert.True(t, isCSVFile("DATA.CSV"))
	assert.True(t, isCSVFile("/tmp/a/b.Csv"))
	assert.False(t, isCSVFile("data.tsv"))
	assert.False(t, isCSVFile("data"))
	assert.False(t, isCSVFile("csv"))
}

func TestRejectsNonCSVExtension(t *testing.T) {
	_, err := executeCommand(t, "data.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a CSV file")
}

func TestMissingFileErrors(t *testing.T) {
	_, err := executeCommand(t, filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.csv")
}

func TestEmptyFilePrintsNoDataMessage(t *testing.T) {
	path := writeSample(t, "  \n\n")
	out, err := executeCommand(t, path)
	require.NoError(t, err)
	assert.Contains(t, out, "no data found in people.csv")
}

func TestLimitAndTailAreMutuallyExclusive(t *testing.T) {
	path := writeSample(t, sampleCSV)
	_, err := executeCommand(t, path, "--limit", "2", "--tail", "1")
	require.Error(t, err)
}

func TestCSVOutputWithSearchAndSort(t *testing.T) {
	path := writeSample(t, sampleCSV)
	out, err := executeCommand(t, path, "-o", "csv", "--search", "berlin", "--sort", "age:desc")
	require.NoError(t, err)

	lines := nonEmptyLines(out)
	require.Len(t, lines, 3)
	assert.Equal(t, "name,city,age", lines[0])
	assert.Contains(t, lines[1], "ada")
	assert.Contains(t, lines[2], "cyn")
}

func TestAutoFormatFallsBackToCSVWhenPiped(t *testing.T) {
	path := writeSample(t, sampleCSV)
	out, err := executeCommand(t, path)
	require.NoError(t, err)
	assert.Equal(t, "name,city,age", nonEmptyLines(out)[0])
}

func TestTableOutput(t *testing.T) {
	path := writeSample(t, sampleCSV)
	out, err := executeCommand(t, path, "-o", "table", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "berlin")
	// Header, separator, four data rows.
	assert.Len(t, nonEmptyLines(out), 6)
}

func TestJSONOutputWithWhereFilter(t *testing.T) {
	path := writeSample(t, sampleCSV)
	out, err := executeCommand(t, path, "-o", "json", "--where", `int(_.age) > 40`)
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "bob", rows[0]["name"])
	assert.Equal(t, "dee", rows[1]["name"])
}

func TestBadWhereExpressionErrors(t *testing.T) {
	path := writeSample(t, sampleCSV)
	_, err := executeCommand(t, path, "--where", "_.age ==")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "where filter")
}

func TestTailLimiting(t *testing.T) {
	path := writeSample(t, sampleCSV)
	out, err := executeCommand(t, path, "-o", "csv", "--tail", "1")
	require.NoError(t, err)

	lines := nonEmptyLines(out)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "dee")
}

func TestUnknownOutputFormatErrors(t *testing.T) {
	path := writeSample(t, sampleCSV)
	_, err := executeCommand(t, path, "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestUnknownThemeErrors(t *testing.T) {
	path := writeSample(t, sampleCSV)
	_, err := executeCommand(t, path, "--theme", "solarized")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown theme")
}

func TestUnknownKeymapErrors(t *testing.T) {
	path := writeSample(t, sampleCSV)
	_, err := executeCommand(t, path, "--keymap", "emacs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keymap")
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  format: json\n"), 0o600))
	csvPath := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o600))

	out, err := executeCommand(t, csvPath, "--config-file", cfgPath)
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 4)
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "csvx")
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, l := range bytes.Split([]byte(s), []byte("\n")) {
		if len(bytes.TrimSpace(l)) > 0 {
			lines = append(lines, string(l))
		}
	}
	return lines
}

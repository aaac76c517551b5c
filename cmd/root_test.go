package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Reset sticky flag state left over from earlier invocations
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	reset(rootCmd.Flags())
	reset(rootCmd.PersistentFlags())
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

const sampleInput = "CASE_NUMBER;CASE_STATUS;SOC_NAME;WORKSITE_STATE\n" +
	"I-1;CERTIFIED;SOFTWARE DEVELOPERS, APPLICATIONS;CA\n" +
	"I-2;CERTIFIED;SOFTWARE DEVELOPERS, APPLICATIONS;WA\n" +
	"I-3;DENIED;ACCOUNTANTS AND AUDITORS;CA\n" +
	"I-4;CERTIFIED;ACCOUNTANTS AND AUDITORS;NY\n" +
	"I-5;CERTIFIED-WITHDRAWN;COMPUTER SYSTEMS ANALYST;CA\n" +
	"I-6;CERTIFIED;COMPUTER SYSTEMS ANALYST;TX\n" +
	"I-7;WITHDRAWN;COMPUTER SYSTEMS ANALYST;TX\n"

func TestRoot_WritesBothReports(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "h1b_input.csv")
	require.NoError(t, os.WriteFile(in, []byte(sampleInput), 0o644))
	occ := filepath.Join(home, "output", "top_10_occupations.txt")
	states := filepath.Join(home, "output", "top_10_states.txt")

	out, err := execute(t, in, occ, states)
	require.NoError(t, err)
	assert.Empty(t, out)

	b, err := os.ReadFile(occ)
	require.NoError(t, err)
	assert.Equal(t, "TOP_OCCUPATIONS;NUMBER_CERTIFIED_APPLICATIONS;PERCENTAGE\n"+
		"SOFTWARE DEVELOPERS, APPLICATIONS;2;50.0%\n"+
		"COMPUTER SYSTEMS ANALYST;3;25.0%\n"+
		"ACCOUNTANTS AND AUDITORS;2;25.0%\n", string(b))

	b, err = os.ReadFile(states)
	require.NoError(t, err)
	assert.Equal(t, "TOP_STATES;NUMBER_CERTIFIED_APPLICATIONS;PERCENTAGE\n"+
		"CA;3;25.0%\n"+
		"TX;2;25.0%\n"+
		"NY;1;25.0%\n"+
		"WA;1;25.0%\n", string(b))
}

func TestRoot_VerboseAndTop(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte(sampleInput), 0o644))
	occ := filepath.Join(home, "occ.txt")
	states := filepath.Join(home, "states.txt")

	out, err := execute(t, "--top", "1", "-v", in, occ, states)
	require.NoError(t, err)
	assert.Contains(t, out, "TOP_OCCUPATIONS;NUMBER_CERTIFIED_APPLICATIONS;PERCENTAGE\nSOFTWARE DEVELOPERS, APPLICATIONS;2;50.0%\n")
	assert.Contains(t, out, "TOP_STATES;NUMBER_CERTIFIED_APPLICATIONS;PERCENTAGE\nCA;3;25.0%\n")
	assert.Contains(t, out, "✓ Wrote top states to "+states)

	b, err := os.ReadFile(states)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(b), "\n"))
}

func TestRoot_ArgumentErrors(t *testing.T) {
	home := isolateHome(t)

	_, err := execute(t, "only-one.csv", "occ.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3 arguments")
	assert.Contains(t, err.Error(), "Usage:")

	missing := filepath.Join(home, "missing.csv")
	_, err = execute(t, missing, filepath.Join(home, "o.txt"), filepath.Join(home, "s.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "you must supply a data file")
	_, statErr := os.Stat(filepath.Join(home, "o.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRoot_SchemaErrorWritesNothing(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte("A;B;C\n1;2;3\n"), 0o644))
	occ := filepath.Join(home, "occ.txt")

	_, err := execute(t, in, occ, filepath.Join(home, "states.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no known column schema matched")
	_, statErr := os.Stat(occ)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRoot_ConfigFileDelimiter(t *testing.T) {
	home := isolateHome(t)
	cfgPath := filepath.Join(home, "cfg.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("delimiter: \"|\"\ntop: 1\n"), 0o644))
	in := filepath.Join(home, "in.psv")
	require.NoError(t, os.WriteFile(in, []byte("SOC_NAME|CASE_STATUS|WORKSITE_STATE\nNurse|CERTIFIED|TX\n"), 0o644))
	occ := filepath.Join(home, "occ.txt")

	_, err := execute(t, "--config", cfgPath, in, occ, filepath.Join(home, "states.txt"))
	require.NoError(t, err)
	b, err := os.ReadFile(occ)
	require.NoError(t, err)
	assert.Equal(t, "TOP_OCCUPATIONS|NUMBER_CERTIFIED_APPLICATIONS|PERCENTAGE\nNurse|1|100.0%\n", string(b))
}

func TestRoot_InvalidFlagConfig(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte(sampleInput), 0o644))
	_, err := execute(t, "--delimiter", ";;", in, filepath.Join(home, "o.txt"), filepath.Join(home, "s.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestConfig_SetAndShow(t *testing.T) {
	home := isolateHome(t)
	cfgPath := filepath.Join(home, "conf", "config.yaml")

	out, err := execute(t, "config", "set", "top", "4", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved config")

	_, err = execute(t, "config", "set", "verbose", "true", "--config", cfgPath)
	require.NoError(t, err)

	out, err = execute(t, "config", "show", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "top: 4\n")
	assert.Contains(t, out, "verbose: true\n")
	assert.Contains(t, out, "delimiter: ;\n")

	_, err = execute(t, "config", "set", "colour", "blue", "--config", cfgPath)
	assert.ErrorContains(t, err, "unknown key")
	_, err = execute(t, "config", "set", "log_level", "loud", "--config", cfgPath)
	assert.ErrorContains(t, err, "log_level")
}

func TestRoot_FailedStatesWriteLeavesNoOccupationsReport(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte(sampleInput), 0o644))
	blocker := filepath.Join(home, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o644))
	occ := filepath.Join(home, "occ.txt")

	_, err := execute(t, in, occ, filepath.Join(blocker, "states.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "states.txt")

	_, statErr := os.Stat(occ)
	assert.True(t, os.IsNotExist(statErr), "occupations report must not be written when the states report fails")
	leftovers, err := filepath.Glob(filepath.Join(home, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestRoot_FailedWriteKeepsPreviousReports(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte(sampleInput), 0o644))
	occ := filepath.Join(home, "occ.txt")
	require.NoError(t, os.WriteFile(occ, []byte("previous run\n"), 0o644))
	blocker := filepath.Join(home, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := execute(t, in, occ, filepath.Join(blocker, "states.txt"))
	require.Error(t, err)
	b, err := os.ReadFile(occ)
	require.NoError(t, err)
	assert.Equal(t, "previous run\n", string(b))
}

func TestRoot_TopMustBePositive(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte(sampleInput), 0o644))
	occ := filepath.Join(home, "occ.txt")

	for _, top := range []string{"0", "-2"} {
		_, err := execute(t, "--top="+top, in, occ, filepath.Join(home, "states.txt"))
		require.Error(t, err, top)
		assert.Contains(t, err.Error(), "top must be >= 1")
	}
	_, statErr := os.Stat(occ)
	assert.True(t, os.IsNotExist(statErr))

	cfgPath := filepath.Join(home, "config.yaml")
	_, err := execute(t, "config", "set", "top", "0", "--config", cfgPath)
	assert.ErrorContains(t, err, "invalid top")
}

func TestRoot_CommaDelimiterAppliesToHeader(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte("SOC_NAME,CASE_STATUS,WORKSITE_STATE\nX,CERTIFIED,CA\nX,DENIED,CA\n"), 0o644))
	occ := filepath.Join(home, "occ.txt")
	states := filepath.Join(home, "states.txt")

	_, err := execute(t, "--delimiter", ",", in, occ, states)
	require.NoError(t, err)
	b, err := os.ReadFile(occ)
	require.NoError(t, err)
	assert.Equal(t, "TOP_OCCUPATIONS,NUMBER_CERTIFIED_APPLICATIONS,PERCENTAGE\nX,2,100.0%\n", string(b))
	b, err = os.ReadFile(states)
	require.NoError(t, err)
	assert.Equal(t, "TOP_STATES,NUMBER_CERTIFIED_APPLICATIONS,PERCENTAGE\nCA,2,100.0%\n", string(b))
}

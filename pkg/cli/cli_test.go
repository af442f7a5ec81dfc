package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/TechXTT/oraconsole/internal/driver/drivertest"
	"github.com/TechXTT/oraconsole/pkg/config"
	"github.com/TechXTT/oraconsole/pkg/history"
	"github.com/TechXTT/oraconsole/pkg/session"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"serve", "exec", "history", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, version()+"\n", out.String())
}

func TestRunExec(t *testing.T) {
	connector := &drivertest.Connector{
		Handler: func(string, map[string]any) (*drivertest.Outcome, error) {
			cur := drivertest.NewCursor("ID", "NAME").
				AddRow(1, "EMP").
				AddRow(20, "DEPARTMENTS")
			return drivertest.Cursors(cur), nil
		},
	}
	reg := session.NewRegistry(connector, session.WithLogger(zaptest.NewLogger(t)))
	hist := history.New(history.DefaultLimit)

	var out bytes.Buffer
	err := runExec(context.Background(), &out, reg, hist, "SELECT ID, NAME FROM T", false)
	require.NoError(t, err)

	assert.Equal(t, "ID  NAME\n1   EMP\n20  DEPARTMENTS\n(2 rows)\n", out.String())
	assert.Zero(t, reg.Len(), "session must be released")
	assert.Equal(t, int64(1), connector.Stats.Closes.Load())

	latest, ok := hist.Latest()
	require.True(t, ok)
	assert.Equal(t, "SELECT ID, NAME FROM T", latest.Data)
}

func TestRunExec_ReleasesOnError(t *testing.T) {
	connector := &drivertest.Connector{
		Handler: func(string, map[string]any) (*drivertest.Outcome, error) {
			return nil, errors.New("ORA-00900: invalid SQL statement")
		},
	}
	reg := session.NewRegistry(connector)

	err := runExec(context.Background(), &bytes.Buffer{}, reg, nil, "BOGUS", false)
	require.ErrorIs(t, err, session.ErrExecutionFailed)
	assert.Zero(t, reg.Len())
}

func TestRunExec_NoLimit(t *testing.T) {
	connector := &drivertest.Connector{
		Handler: func(string, map[string]any) (*drivertest.Outcome, error) {
			cur := drivertest.NewCursor("N")
			for i := 0; i < session.DefaultRowLimit+5; i++ {
				cur.AddRow(i)
			}
			return drivertest.Cursors(cur), nil
		},
	}
	reg := session.NewRegistry(connector)

	var out bytes.Buffer
	require.NoError(t, runExec(context.Background(), &out, reg, nil, "SELECT N FROM T", true))
	assert.Contains(t, out.String(), "(1005 rows)")

	out.Reset()
	require.NoError(t, runExec(context.Background(), &out, reg, nil, "SELECT N FROM T", false))
	assert.Contains(t, out.String(), "(1000 rows)")
}

func TestPrintResult_DML(t *testing.T) {
	affected := int64(3)
	var out bytes.Buffer
	require.NoError(t, printResult(&out, &session.Result{RowsAffected: &affected}))
	assert.Equal(t, "3 rows affected\n", out.String())
}

func TestPrintResult_ManySets(t *testing.T) {
	res := &session.Result{Data: []session.ResultSet{
		{Metadata: []session.Column{{Name: "A"}}, Rows: [][]any{{nil}}},
		{Metadata: []session.Column{{Name: "B"}}, Rows: [][]any{{[]byte{0xca, 0xfe}}}},
	}}
	var out bytes.Buffer
	require.NoError(t, printResult(&out, res))
	assert.Equal(t, "A\nNULL\n(1 rows)\n\nB\ncafe\n(1 rows)\n", out.String())
}

func TestHistoryCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	t.Setenv(config.EnvHistory, path)

	hist, err := history.Open(path)
	require.NoError(t, err)
	hist.Add("SELECT 1 FROM DUAL")
	hist.Add("SELECT SYSDATE FROM DUAL")
	require.NoError(t, hist.Save())

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"history"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "SELECT 1 FROM DUAL")
	assert.Contains(t, out.String(), "latest:\nSELECT SYSDATE FROM DUAL\n")

	root = NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"history", "--clear"})
	require.NoError(t, root.Execute())

	hist, err = history.Open(path)
	require.NoError(t, err)
	assert.Empty(t, hist.Entries())
}

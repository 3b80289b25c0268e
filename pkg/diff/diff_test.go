package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpDiff(t *testing.T) {
	oldSQL := "CREATE TABLE t(a);\nINSERT INTO t VALUES(1);\nINSERT INTO t VALUES(2);\n"
	newSQL := "CREATE TABLE t(a);\nINSERT INTO t VALUES(1);\nINSERT INTO t VALUES(3);\n"

	res, err := DumpDiff(oldSQL, newSQL, "prev.sqlite", "next.sqlite")
	require.NoError(t, err)

	assert.Contains(t, res.Text, "--- prev.sqlite")
	assert.Contains(t, res.Text, "+++ next.sqlite")
	assert.Contains(t, res.Text, "-INSERT INTO t VALUES(2);")
	assert.Contains(t, res.Text, "+INSERT INTO t VALUES(3);")
	assert.Equal(t, "# summary: 1 additions, 1 deletions\n", res.Summary)
}

func TestDumpDiffIdentical(t *testing.T) {
	sql := "CREATE TABLE t(a);\n"
	res, err := DumpDiff(sql, sql, "a", "b")
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.Equal(t, 0, res.LineCount())
}

func TestLineCount(t *testing.T) {
	assert.Equal(t, 0, Result{}.LineCount())
	assert.Equal(t, 1, Result{Text: "one line\n"}.LineCount())
	assert.Equal(t, 3, Result{Text: "a\nb\nc\n"}.LineCount())
	assert.Equal(t, 3, Result{Text: "a\nb\nc"}.LineCount())
}

package replog_test

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirdkv/dird/entry"
	"github.com/dirdkv/dird/replog"
)

func TestMemorySinkAppendsInOrder(t *testing.T) {
	sink := replog.NewMemorySink()
	require.NoError(t, sink.Append(replog.Entry{OpID: "1", Op: "MODIFY", Name: "cn=alice"}))
	require.NoError(t, sink.Append(replog.Entry{OpID: "2", Op: "MODIFY", Name: "cn=bob"}))

	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "cn=alice", entries[0].Name)
	assert.Equal(t, "cn=bob", entries[1].Name)
}

func TestFileSinkAppendsNewlineDelimitedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replog.jsonl")
	sink, err := replog.NewFileSink(path)
	require.NoError(t, err)

	mailDesc := &entry.AttributeDescription{Name: "mail"}
	require.NoError(t, sink.Append(replog.Entry{
		OpID: "abc", Op: "MODIFY", Name: "cn=alice",
		ModList: replog.FromModList(entry.ModList{
			{Op: entry.Add, Desc: mailDesc, Values: []string{"a@example.com"}},
		}),
	}))
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	line := scanner.Text()
	assert.Contains(t, line, "cn=alice")
	assert.Contains(t, line, "mail")
	assert.False(t, scanner.Scan())
}

func TestFromModListProjectsNameOpAndValues(t *testing.T) {
	desc := &entry.AttributeDescription{Name: "sn"}
	records := replog.FromModList(entry.ModList{
		{Op: entry.Delete, Desc: desc, Values: []string{"Smith"}},
	})
	require.Len(t, records, 1)
	assert.Equal(t, "DELETE", records[0].Op)
	assert.Equal(t, "sn", records[0].Attr)
	assert.Equal(t, []string{"Smith"}, records[0].Values)
}

package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"robotorder/lib/restyutil"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const sampleOrders = `Order number,Head,Body,Legs,Address
1,1,2,3,Address 123
2,3,4,5,"Street 1, Apt 2"
3,6,1,2,Somewhere 9
`

func TestParse(t *testing.T) {
	result, err := Parse(strings.NewReader(sampleOrders))
	require.NoError(t, err)

	expected := []Order{
		{Number: "1", Head: "1", Body: "2", Legs: "3", Address: "Address 123"},
		{Number: "2", Head: "3", Body: "4", Legs: "5", Address: "Street 1, Apt 2"},
		{Number: "3", Head: "6", Body: "1", Legs: "2", Address: "Somewhere 9"},
	}
	if diff := cmp.Diff(expected, result); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseReorderedAndExtraColumns(t *testing.T) {
	input := "Address,Extra,Legs,Body,Head,Order number\nHome,x,4,5,6,77\n"
	result, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []Order{
		{Number: "77", Head: "6", Body: "5", Legs: "4", Address: "Home"},
	}, result)
}

func TestParseMissingColumn(t *testing.T) {
	testCases := []string{
		"",
		"Order number,Head,Body,Legs\n1,1,1,1\n",
		"Head,Body,Legs,Address\n1,1,1,x\n",
	}
	for _, input := range testCases {
		_, err := Parse(strings.NewReader(input))
		require.ErrorIs(t, err, ErrMissingColumn, "input: %q", input)
	}
}

func TestParseMalformedRow(t *testing.T) {
	_, err := Parse(strings.NewReader("Order number,Head,Body,Legs,Address\n1,2,3\n"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMissingColumn)
}

func TestParseHeaderOnly(t *testing.T) {
	result, err := Parse(strings.NewReader("Order number,Head,Body,Legs,Address\n"))
	require.NoError(t, err)
	require.Empty(t, result)
}

func TestFetchOverwrites(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders.csv", r.URL.Path)
		w.Write([]byte(sampleOrders))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale contents that are much longer than the real file would ever be, stale stale stale stale stale stale stale stale stale stale stale stale stale stale stale stale"), 0600))

	result, err := Fetch(context.Background(), NewClient(ClientOptions{}), server.URL+"/orders.csv", path)
	require.NoError(t, err)
	require.Len(t, result, 3)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, sampleOrders, string(contents))
}

func TestDownloadErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := Download(context.Background(), NewClient(ClientOptions{}), server.URL+"/orders.csv", filepath.Join(t.TempDir(), "orders.csv"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRejectsPathLikeNumbers(t *testing.T) {
	for _, number := range []string{"../../x", "a/b", `a\b`, ".."} {
		input := "Order number,Head,Body,Legs,Address\n\"" + number + "\",1,2,3,Somewhere\n"
		_, err := Parse(strings.NewReader(input))
		require.ErrorIs(t, err, ErrInvalidNumber, number)
	}
}

func TestFetchWithRawMessageOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleOrders))
	}))
	defer server.Close()

	dir := t.TempDir()
	output, err := restyutil.NewFilesystemOutput(filepath.Join(dir, "resty"))
	require.NoError(t, err)

	result, err := Fetch(context.Background(), NewClient(ClientOptions{Output: output}), server.URL+"/orders.csv", filepath.Join(dir, "orders.csv"))
	require.NoError(t, err)
	require.Len(t, result, 3)

	entries, err := os.ReadDir(filepath.Join(dir, "resty"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

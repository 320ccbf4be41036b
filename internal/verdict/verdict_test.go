package verdict_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mughalk/csc301-a2/internal/verdict"
	"github.com/mughalk/csc301-a2/pkg/storage"
)

func TestAggregator_CountsAndOK(t *testing.T) {
	a := verdict.NewAggregator()
	a.Record(verdict.Verdict{Name: "a", Status: verdict.Pass})
	a.Record(verdict.Verdict{Name: "b", Status: verdict.Skipped})
	a.Record(verdict.Verdict{Name: "c", Status: verdict.Pass})

	pass, fail, skipped := a.Counts()
	assert.Equal(t, 2, pass)
	assert.Equal(t, 0, fail)
	assert.Equal(t, 1, skipped)
	assert.True(t, a.OK(), "skips never fail a run")

	a.Record(verdict.Verdict{Name: "d", Status: verdict.Fail})
	assert.False(t, a.OK())
}

func TestAggregator_PreservesRecordOrder(t *testing.T) {
	a := verdict.NewAggregator()
	for _, name := range []string{"first", "second", "third"} {
		a.Record(verdict.Verdict{Name: name, Status: verdict.Pass})
	}

	got := a.Verdicts()
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "third", got[2].Name)
}

func TestAggregator_ConcurrentRecord(t *testing.T) {
	a := verdict.NewAggregator()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Record(verdict.Verdict{Name: "x", Status: verdict.Pass})
		}()
	}
	wg.Wait()

	pass, _, _ := a.Counts()
	assert.Equal(t, 50, pass)
}

func TestRender_CaseBlocksAndSummary(t *testing.T) {
	report := string(verdict.Render([]verdict.Verdict{
		{
			Name:       "user_get_200",
			Status:     verdict.Pass,
			Method:     "GET",
			URL:        "http://localhost:14000/user/1",
			HTTPStatus: 200,
			Body:       `{"id":1}`,
		},
		{
			Name:       "user_get_404_missing",
			Status:     verdict.Fail,
			Method:     "GET",
			URL:        "http://localhost:14000/user/99",
			HTTPStatus: 200,
			Body:       `{"id":99}`,
			Reasons:    []string{"status 200 not in expected set [404]"},
		},
		{
			Name:    "user_broken_payload",
			Status:  verdict.Skipped,
			Reasons: []string{"payload is not a JSON object"},
		},
		{
			Name:       "user_get_200_unrecorded",
			Status:     verdict.Pass,
			Method:     "GET",
			URL:        "http://localhost:14000/user/2",
			HTTPStatus: 200,
			Note:       "no expected body recorded",
		},
	}))

	assert.Contains(t, report, "== user_get_200 ==")
	assert.Contains(t, report, "REQUEST: GET http://localhost:14000/user/1")
	assert.Contains(t, report, "RESULT:  PASS")
	assert.Contains(t, report, "REASON:  status 200 not in expected set [404]")
	assert.NotContains(t, report, "REQUEST: \n", "skipped cases carry no request line")
	assert.Contains(t, report, "NOTE:    no expected body recorded")
	assert.Contains(t, report, "PASS:    2")
	assert.Contains(t, report, "FAIL:    1")
	assert.Contains(t, report, "SKIPPED: 1")
	assert.Contains(t, report, "TOTAL:   4")
}

func TestWriteReport_StoresArtifact(t *testing.T) {
	disk, err := storage.Open(storage.Options{Driver: "local", Root: t.TempDir()})
	require.NoError(t, err)

	verdicts := []verdict.Verdict{{Name: "a", Status: verdict.Pass, HTTPStatus: 200}}
	require.NoError(t, verdict.WriteReport(disk, "run/results.txt", verdicts))

	assert.True(t, disk.Exists("run/results.txt"))
	content, err := disk.Get("run/results.txt")
	require.NoError(t, err)
	assert.Contains(t, string(content), "== a ==")
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/appstate/pkg/state"
	"github.com/bft-labs/appstate/pkg/tracker"
)

type staticSource struct {
	rec   state.Record
	stats tracker.Stats
}

func (s staticSource) CurrentState() state.Record { return s.rec }
func (s staticSource) Stats() tracker.Stats       { return s.stats }

func TestCollectors_ReadSourceAtScrape(t *testing.T) {
	src := staticSource{
		rec: state.Record{
			ActiveDurationSinceLaunch: 1500 * time.Millisecond,
			LaunchesSinceLastCrash:    4,
			CrashedLastLaunch:         true,
			ApplicationIsInForeground: true,
		},
		stats: tracker.Stats{PersistFailures: 2},
	}
	reg := NewRegistry(src, false)

	expected := `
# HELP appstate_launches_since_last_crash Launches since the last crash
# TYPE appstate_launches_since_last_crash gauge
appstate_launches_since_last_crash 4
# HELP appstate_persist_failures_total State writes that failed
# TYPE appstate_persist_failures_total counter
appstate_persist_failures_total 2
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"appstate_launches_since_last_crash", "appstate_persist_failures_total")
	require.NoError(t, err)

	cs := Collectors(src)
	assert.Equal(t, 1.5, testutil.ToFloat64(cs[0]))
	assert.Equal(t, float64(1), testutil.ToFloat64(cs[7]))
	assert.Equal(t, float64(0), testutil.ToFloat64(cs[8]))
	assert.Equal(t, float64(1), testutil.ToFloat64(cs[9]))
}

func TestCollectors_FollowTracker(t *testing.T) {
	tr := tracker.New(tracker.WithStateLock(false))
	tr.NotifyAppActive(true)

	reg := NewRegistry(tr, false)
	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	active := Collectors(tr)[8]
	assert.Equal(t, float64(1), testutil.ToFloat64(active))
	tr.NotifyAppActive(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(active))
}

func TestHTTPHandler_Serves(t *testing.T) {
	reg := NewRegistry(staticSource{}, true)
	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

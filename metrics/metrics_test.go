package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecorders(t *testing.T) {
	Convey("Recorders update their collectors", t, func() {
		before := testutil.ToFloat64(commandsTotal.WithLabelValues("seek", ResultTimeout))
		RecordCommand("seek", ResultTimeout, 500*time.Millisecond)
		So(testutil.ToFloat64(commandsTotal.WithLabelValues("seek", ResultTimeout)), ShouldEqual, before+1)

		WorkerStarted()
		So(testutil.ToFloat64(commandsInflight), ShouldEqual, 1)
		WorkerDone()
		So(testutil.ToFloat64(commandsInflight), ShouldEqual, 0)

		RecordIdleDecision("storm")
		So(testutil.ToFloat64(idleDecisions.WithLabelValues("storm")), ShouldBeGreaterThanOrEqualTo, 1)

		RecordLoopReload(true)
		So(testutil.ToFloat64(loopReloads.WithLabelValues("success")), ShouldBeGreaterThanOrEqualTo, 1)
	})

	Convey("The handler exposes the registry", t, func() {
		RecordEvent("file-loaded", true)

		rec := httptest.NewRecorder()
		Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		So(rec.Code, ShouldEqual, http.StatusOK)

		body := rec.Body.String()
		So(strings.Contains(body, "mediacore_engine_events_total"), ShouldBeTrue)
		So(strings.Contains(body, "go_goroutines"), ShouldBeTrue)
	})
}

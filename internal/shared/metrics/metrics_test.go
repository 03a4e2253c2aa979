package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstream(t *testing.T) {
	before := testutil.CollectAndCount(UpstreamDuration)
	ObserveUpstream("test_target", time.Now(), nil)
	ObserveUpstream("test_target", time.Now(), errors.New("boom"))
	assert.Equal(t, before+2, testutil.CollectAndCount(UpstreamDuration))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(ApplicationsSubmitted.WithLabelValues("created"))
	ApplicationsSubmitted.WithLabelValues("created").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ApplicationsSubmitted.WithLabelValues("created")))
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPairsCreated(t *testing.T) {
	before := testutil.ToFloat64(pairsCreated.WithLabelValues("auto"))

	RecordPairsCreated("auto", 3)
	RecordPairsCreated("auto", 0)

	assert.Equal(t, before+3, testutil.ToFloat64(pairsCreated.WithLabelValues("auto")))
}

func TestRecordUnpaired(t *testing.T) {
	RecordUnpaired(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(unpairedMembers))
	RecordUnpaired(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(unpairedMembers))
}

func TestObserveRequestCollapsesStatus(t *testing.T) {
	ObserveRequest("GET", 204, 0.01)
	ObserveRequest("POST", 503, 0.5)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(httpRequests), 2)
}

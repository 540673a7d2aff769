package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/module"
)

// ChainCollector collects metrics of the chain-management core.
type ChainCollector struct {
	lastBlockHeight      prometheus.Gauge
	lastDownloadedHeight prometheus.Gauge
	blocksProcessed      *prometheus.CounterVec
	batchDuration        prometheus.Histogram
	batchSize            prometheus.Histogram
	queueLength          prometheus.Gauge
	statesEntered        *prometheus.CounterVec
	forkRecoveries       prometheus.Counter
	forkRemovedBlocks    prometheus.Counter
	rollbackIterations   prometheus.Counter
	rollbackBlocks       prometheus.Counter
	removedBlocks        prometheus.Counter
}

var _ module.ChainMetrics = (*ChainCollector)(nil)

// NewChainCollector registers the chain metrics with the given registerer.
func NewChainCollector(registerer prometheus.Registerer) *ChainCollector {
	factory := promauto.With(registerer)

	cc := &ChainCollector{
		lastBlockHeight: factory.NewGauge(prometheus.GaugeOpts{
			Name:      "last_block_height",
			Namespace: namespaceDPoS,
			Subsystem: subsystemBlockchain,
			Help:      "height of the last accepted block",
		}),
		lastDownloadedHeight: factory.NewGauge(prometheus.GaugeOpts{
			Name:      "last_downloaded_height",
			Namespace: namespaceDPoS,
			Subsystem: subsystemBlockchain,
			Help:      "height of the last block downloaded from peers",
		}),
		blocksProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "blocks_processed_total",
			Namespace: namespaceDPoS,
			Subsystem: subsystemBlockchain,
			Help:      "number of processed blocks by disposition",
		}, []string{LabelDisposition}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:      "batch_duration_seconds",
			Namespace: namespaceDPoS,
			Subsystem: subsystemQueue,
			Help:      "time spent processing one chunk of blocks",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30},
		}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:      "batch_size_blocks",
			Namespace: namespaceDPoS,
			Subsystem: subsystemQueue,
			Help:      "number of blocks per processed chunk",
			Buckets:   []float64{1, 5, 10, 25, 50, 100},
		}),
		queueLength: factory.NewGauge(prometheus.GaugeOpts{
			Name:      "length",
			Namespace: namespaceDPoS,
			Subsystem: subsystemQueue,
			Help:      "number of chunks waiting to be processed",
		}),
		statesEntered: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "states_entered_total",
			Namespace: namespaceDPoS,
			Subsystem: subsystemBlockchain,
			Help:      "number of transitions into each state of the chain state machine",
		}, []string{LabelState}),
		forkRecoveries: factory.NewCounter(prometheus.CounterOpts{
			Name:      "fork_recoveries_total",
			Namespace: namespaceDPoS,
			Subsystem: subsystemBlockchain,
			Help:      "number of fork recoveries",
		}),
		forkRemovedBlocks: factory.NewCounter(prometheus.CounterOpts{
			Name:      "fork_removed_blocks_total",
			Namespace: namespaceDPoS,
			Subsystem: subsystemBlockchain,
			Help:      "number of blocks removed by fork recoveries",
		}),
		rollbackIterations: factory.NewCounter(prometheus.CounterOpts{
			Name:      "database_rollback_iterations_total",
			Namespace: namespaceDPoS,
			Subsystem: subsystemBlockchain,
			Help:      "number of database rollback iterations",
		}),
		rollbackBlocks: factory.NewCounter(prometheus.CounterOpts{
			Name:      "database_rollback_blocks_total",
			Namespace: namespaceDPoS,
			Subsystem: subsystemBlockchain,
			Help:      "number of blocks removed by database rollbacks",
		}),
		removedBlocks: factory.NewCounter(prometheus.CounterOpts{
			Name:      "removed_blocks_total",
			Namespace: namespaceDPoS,
			Subsystem: subsystemBlockchain,
			Help:      "number of blocks removed from the top of the chain",
		}),
	}

	return cc
}

func (cc *ChainCollector) LastBlockHeight(height uint64) {
	cc.lastBlockHeight.Set(float64(height))
}

func (cc *ChainCollector) LastDownloadedHeight(height uint64) {
	cc.lastDownloadedHeight.Set(float64(height))
}

func (cc *ChainCollector) BlockProcessed(disposition chain.Disposition) {
	cc.blocksProcessed.WithLabelValues(disposition.String()).Inc()
}

func (cc *ChainCollector) BatchProcessed(blocks int, duration time.Duration) {
	cc.batchSize.Observe(float64(blocks))
	cc.batchDuration.Observe(duration.Seconds())
}

func (cc *ChainCollector) QueueLength(length int) {
	cc.queueLength.Set(float64(length))
}

func (cc *ChainCollector) StateEntered(state string) {
	cc.statesEntered.WithLabelValues(state).Inc()
}

func (cc *ChainCollector) ForkRecovery(removed uint64) {
	cc.forkRecoveries.Inc()
	cc.forkRemovedBlocks.Add(float64(removed))
}

func (cc *ChainCollector) DatabaseRollback(removed uint64) {
	cc.rollbackIterations.Inc()
	cc.rollbackBlocks.Add(float64(removed))
}

func (cc *ChainCollector) BlocksRemoved(count uint64) {
	cc.removedBlocks.Add(float64(count))
}

package metrics

import (
	"time"

	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/module"
)

type NoopCollector struct{}

var _ module.ChainMetrics = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) LastBlockHeight(height uint64)                      {}
func (nc *NoopCollector) LastDownloadedHeight(height uint64)                 {}
func (nc *NoopCollector) BlockProcessed(disposition chain.Disposition)       {}
func (nc *NoopCollector) BatchProcessed(blocks int, duration time.Duration) {}
func (nc *NoopCollector) QueueLength(length int)                             {}
func (nc *NoopCollector) StateEntered(state string)                          {}
func (nc *NoopCollector) ForkRecovery(removed uint64)                        {}
func (nc *NoopCollector) DatabaseRollback(removed uint64)                    {}
func (nc *NoopCollector) BlocksRemoved(count uint64)                         {}

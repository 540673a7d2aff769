package processor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/module/metrics"
	modulemock "github.com/dposchain/node/module/mock"
	"github.com/dposchain/node/module/slots"
	"github.com/dposchain/node/state/chainstate"
	"github.com/dposchain/node/state/tail"
	"github.com/dposchain/node/storage"
	storagemock "github.com/dposchain/node/storage/mock"
	"github.com/dposchain/node/utils/unittest"
)

// mockBlockchain records the calls the processor makes into the facade.
type mockBlockchain struct {
	mock.Mock
}

func (m *mockBlockchain) ClearQueue() { m.Called() }
func (m *mockBlockchain) ForkBlock(block *chain.Block, rollbackHint uint64) {
	m.Called(block, rollbackHint)
}
func (m *mockBlockchain) ResetWakeUp()                      { m.Called() }
func (m *mockBlockchain) BroadcastBlock(block *chain.Block) { m.Called(block) }
func (m *mockBlockchain) Fail()                             { m.Called() }

type ProcessorSuite struct {
	suite.Suite

	ctx       context.Context
	blocks    *storagemock.Blocks
	pool      *modulemock.TransactionPool
	verifier  *modulemock.Verifier
	chain     *mockBlockchain
	state     *chainstate.State
	slots     *slots.Slots
	delegates []chain.PublicKey
	last      *chain.Block
	processor *Processor
}

func TestProcessor(t *testing.T) {
	suite.Run(t, new(ProcessorSuite))
}

func (s *ProcessorSuite) SetupTest() {
	s.ctx = context.Background()
	s.blocks = storagemock.NewBlocks(s.T())
	s.pool = modulemock.NewTransactionPool(s.T())
	s.verifier = modulemock.NewVerifier(s.T())
	s.chain = &mockBlockchain{}
	s.chain.Test(s.T())

	epoch := time.Unix(0, 0)
	s.slots = slots.New(epoch, 8*time.Second, 5).WithClock(func() time.Time {
		return epoch.Add(1000 * 8 * time.Second)
	})
	s.delegates = unittest.PublicKeyListFixture(5)

	tl, err := tail.New(100, 1000)
	s.Require().NoError(err)
	s.state = chainstate.New(tl, false)

	s.last = unittest.BlockFixture(unittest.WithHeight(100), unittest.WithTimestamp(800))
	s.last.GeneratorPublicKey = s.forger(s.last.Timestamp)
	s.state.SetLastBlock(s.last)
	s.state.SetLastStoredBlockHeight(100)
	s.state.MarkStarted()

	s.blocks.On("ActiveDelegates", mock.Anything).Return(s.delegates, nil).Maybe()
	s.chain.On("ClearQueue").Maybe()
	s.chain.On("ResetWakeUp").Maybe()

	s.processor = New(
		unittest.Logger(),
		metrics.NewNoopCollector(),
		s.blocks,
		s.state,
		s.pool,
		s.verifier,
		s.slots,
		s.chain,
		Config{NotReadyMaxAttempts: 5, NotReadyRollbackBlocks: 5000},
	)
}

func (s *ProcessorSuite) TearDownTest() {
	s.chain.AssertExpectations(s.T())
}

func (s *ProcessorSuite) forger(timestamp uint64) chain.PublicKey {
	forger, _ := s.slots.Forger(s.delegates, timestamp)
	return forger
}

// forge returns a valid block on top of parent with one transaction.
func (s *ProcessorSuite) forge(parent *chain.Block) *chain.Block {
	block := unittest.BlockFixture(
		unittest.WithParent(parent, 8),
		unittest.WithTransactions(unittest.TransactionFixture()),
	)
	block.GeneratorPublicKey = s.forger(block.Timestamp)
	return block
}

// expectAccept sets up the storage and pool calls of accepting the block.
func (s *ProcessorSuite) expectAccept(block *chain.Block) {
	s.blocks.On("ForgedTransactionIDs", block.TransactionIDs()).Return(chain.IdentifierList(nil), nil).Once()
	s.blocks.On("ApplyBlock", block).Return(nil).Once()
	s.pool.On("AcceptChainedBlock", mock.Anything, block).Return(nil).Once()
}

// TestAcceptChainedBatch extends the chain from 100 to 102 and relays only
// the last processed block.
func (s *ProcessorSuite) TestAcceptChainedBatch() {
	b101 := s.forge(s.last)
	b102 := s.forge(b101)
	s.expectAccept(b101)
	s.expectAccept(b102)
	s.blocks.On("SaveBlocks", []*chain.Block{b101, b102}).Return(nil).Once()
	s.chain.On("BroadcastBlock", b102).Once()

	tailBefore := s.state.Tail().Len()
	accepted, err := s.processor.ProcessBlocks(s.ctx, []*chain.Block{b101, b102})
	s.Require().NoError(err)

	s.Assert().Equal([]*chain.Block{b101, b102}, accepted)
	s.Assert().Equal(uint64(102), s.state.LastHeight())
	s.Assert().Equal(uint64(102), s.state.LastStoredBlockHeight())
	s.Assert().Equal(tailBefore+2, s.state.Tail().Len())
	s.chain.AssertNumberOfCalls(s.T(), "BroadcastBlock", 1)
}

func (s *ProcessorSuite) TestStopsAtFirstNonAccepted() {
	b101 := s.forge(s.last)
	b102 := s.forge(b101)
	b102.GeneratorPublicKey = unittest.PublicKeyFixture()
	b103 := s.forge(b102)
	s.expectAccept(b101)
	s.blocks.On("SaveBlocks", []*chain.Block{b101}).Return(nil).Once()

	accepted, err := s.processor.ProcessBlocks(s.ctx, []*chain.Block{b101, b102, b103})
	s.Require().NoError(err)
	s.Assert().Equal([]*chain.Block{b101}, accepted)
	s.Assert().Equal(uint64(101), s.state.LastHeight())
	s.Assert().Equal(b101, s.state.LastDownloadedBlock())
}

func (s *ProcessorSuite) TestBatchNotChained() {
	orphan := unittest.ChainFixture(unittest.BlockFixture(unittest.WithHeight(102)), 2)
	s.state.SetLastDownloadedBlock(orphan[1])

	accepted, err := s.processor.ProcessBlocks(s.ctx, orphan)
	s.Require().NoError(err)
	s.Assert().Empty(accepted)
	s.chain.AssertCalled(s.T(), "ClearQueue")
	s.Assert().Equal(s.last, s.state.LastDownloadedBlock())
	s.blocks.AssertNotCalled(s.T(), "ActiveDelegates", mock.Anything)
}

// TestDuplicateReceipt submits the last block twice: both are no-ops and
// nothing is persisted or relayed.
func (s *ProcessorSuite) TestDuplicateReceipt() {
	for i := 0; i < 2; i++ {
		verdict := s.processor.Process(s.ctx, s.last)
		s.Assert().Equal(EqualToLastBlock, verdict.Unchained)
		s.Assert().False(verdict.Fork)

		accepted, err := s.processor.ProcessBlocks(s.ctx, []*chain.Block{s.last})
		s.Require().NoError(err)
		s.Assert().Empty(accepted)
	}
	s.blocks.AssertNotCalled(s.T(), "ApplyBlock", mock.Anything)
	s.blocks.AssertNotCalled(s.T(), "SaveBlocks", mock.Anything)
	s.Assert().Equal(uint64(100), s.state.LastHeight())
}

// TestDoubleForging competes with the last block at the same height using
// an active delegate: the block is rejected and fork recovery targets it.
func (s *ProcessorSuite) TestDoubleForging() {
	competitor := unittest.BlockFixture(
		unittest.WithHeight(100),
		unittest.WithTimestamp(s.last.Timestamp),
		unittest.WithGenerator(s.delegates[3]),
	)
	s.chain.On("ForkBlock", competitor, uint64(0)).Once()

	accepted, err := s.processor.ProcessBlocks(s.ctx, []*chain.Block{competitor})
	s.Require().NoError(err)
	s.Assert().Empty(accepted)

	verdict := s.processor.Process(s.ctx, competitor)
	s.Assert().Equal(chain.Rejected, verdict.Disposition)
	s.Assert().Equal(DoubleForging, verdict.Unchained)
	s.Assert().True(verdict.Fork)
	s.chain.AssertCalled(s.T(), "ClearQueue")
}

func (s *ProcessorSuite) TestUnchainedStatuses() {
	stale := unittest.BlockFixture(unittest.WithHeight(90))
	verdict := s.processor.Process(s.ctx, stale)
	s.Assert().Equal(AlreadyInBlockchain, verdict.Unchained)
	s.Assert().Equal(chain.DiscardedButCanBeBroadcasted, verdict.Disposition)

	early := unittest.BlockFixture(unittest.WithHeight(100), unittest.WithTimestamp(s.last.Timestamp-8))
	verdict = s.processor.Process(s.ctx, early)
	s.Assert().Equal(InvalidTimestamp, verdict.Unchained)
	s.Assert().Equal(chain.Rejected, verdict.Disposition)

	stranger := unittest.BlockFixture(unittest.WithHeight(101), unittest.WithTimestamp(s.last.Timestamp+8))
	verdict = s.processor.Process(s.ctx, stranger)
	s.Assert().Equal(GeneratorMismatch, verdict.Unchained)
	s.Assert().Equal(chain.DiscardedButCanBeBroadcasted, verdict.Disposition)
	s.Assert().False(verdict.Fork)

	ahead := unittest.BlockFixture(unittest.WithHeight(110))
	verdict = s.processor.Process(s.ctx, ahead)
	s.Assert().Equal(NotReadyToAcceptNewHeight, verdict.Unchained)
	s.Assert().Equal(chain.DiscardedButCanBeBroadcasted, verdict.Disposition)
}

// TestNotReadyEscalation feeds the same unchainable block six times: fork
// recovery is forced exactly once, on the sixth attempt.
func (s *ProcessorSuite) TestNotReadyEscalation() {
	ahead := unittest.BlockFixture(unittest.WithHeight(110), unittest.WithTimestamp(880))
	s.chain.On("BroadcastBlock", ahead).Maybe()

	for i := 0; i < 5; i++ {
		_, err := s.processor.ProcessBlocks(s.ctx, []*chain.Block{ahead})
		s.Require().NoError(err)
	}
	s.chain.AssertNotCalled(s.T(), "ForkBlock", mock.Anything, mock.Anything)

	s.chain.On("ForkBlock", ahead, uint64(5000)).Once()
	_, err := s.processor.ProcessBlocks(s.ctx, []*chain.Block{ahead})
	s.Require().NoError(err)
	s.chain.AssertNumberOfCalls(s.T(), "ForkBlock", 1)

	// the counter restarted: the next five attempts do not escalate
	for i := 0; i < 5; i++ {
		_, err := s.processor.ProcessBlocks(s.ctx, []*chain.Block{ahead})
		s.Require().NoError(err)
	}
	s.chain.AssertNumberOfCalls(s.T(), "ForkBlock", 1)
}

func (s *ProcessorSuite) TestPrecedence_ExceptionBypassesChecks() {
	exception := unittest.BlockFixture(unittest.WithParent(s.last, 8))
	exception.Verification = chain.Verification{Verified: false}
	s.processor = New(unittest.Logger(), metrics.NewNoopCollector(), s.blocks, s.state, s.pool, s.verifier, s.slots, s.chain,
		Config{ExceptionBlockIDs: []chain.Identifier{exception.ID}, NotReadyMaxAttempts: 5})

	s.blocks.On("HasBlock", exception.ID).Return(false, nil).Once()
	s.blocks.On("ApplyBlock", exception).Return(nil).Once()
	s.pool.On("AcceptChainedBlock", mock.Anything, exception).Return(nil).Once()

	verdict := s.processor.Process(s.ctx, exception)
	s.Assert().Equal(chain.Accepted, verdict.Disposition)
	s.Assert().Equal(HandlerException, verdict.Handler)

	s.blocks.On("HasBlock", exception.ID).Return(true, nil).Once()
	verdict = s.processor.Process(s.ctx, exception)
	s.Assert().Equal(chain.Rejected, verdict.Disposition)
	s.Assert().Equal(HandlerException, verdict.Handler)
}

func (s *ProcessorSuite) TestPrecedence_VerificationBeforeUnchained() {
	block := unittest.BlockFixture(unittest.WithHeight(150))
	block.Verification = chain.Verification{Verified: false, Errors: []string{"bad signature"}}
	s.pool.On("PurgeSendersWithInvalidTransactions", block).Once()

	verdict := s.processor.Process(s.ctx, block)
	s.Assert().Equal(HandlerVerificationFailed, verdict.Handler)
	s.Assert().Equal(chain.Rejected, verdict.Disposition)
	s.chain.AssertNotCalled(s.T(), "ClearQueue")
}

func (s *ProcessorSuite) TestPrecedence_MultiSignatureReverified() {
	block := s.forge(s.last)
	block.Verification = chain.Verification{Verified: true, ContainsMultiSignatures: true}
	s.verifier.On("VerifyMultiSignatures", mock.Anything, block).
		Return(chain.Verification{Verified: false, ContainsMultiSignatures: true}, nil).Once()
	s.pool.On("PurgeSendersWithInvalidTransactions", block).Once()

	verdict := s.processor.Process(s.ctx, block)
	s.Assert().Equal(HandlerVerificationFailed, verdict.Handler)
}

func (s *ProcessorSuite) TestPrecedence_UnchainedBeforeGenerator() {
	block := unittest.BlockFixture(unittest.WithHeight(105), unittest.WithGenerator(unittest.PublicKeyFixture()))
	verdict := s.processor.Process(s.ctx, block)
	s.Assert().Equal(HandlerUnchained, verdict.Handler)
}

func (s *ProcessorSuite) TestPrecedence_GeneratorBeforeAlreadyForged() {
	block := s.forge(s.last)
	block.GeneratorPublicKey = unittest.PublicKeyFixture()
	s.state.SetLastDownloadedBlock(unittest.BlockFixture(unittest.WithHeight(120)))

	verdict := s.processor.Process(s.ctx, block)
	s.Assert().Equal(HandlerInvalidGenerator, verdict.Handler)
	s.Assert().Equal(chain.Rejected, verdict.Disposition)
	s.Assert().Equal(s.last, s.state.LastDownloadedBlock())
	s.blocks.AssertNotCalled(s.T(), "ForgedTransactionIDs", mock.Anything)
}

func (s *ProcessorSuite) TestPrecedence_AlreadyForgedBeforeAccept() {
	block := s.forge(s.last)
	s.blocks.On("ForgedTransactionIDs", block.TransactionIDs()).Return(block.TransactionIDs(), nil).Once()

	verdict := s.processor.Process(s.ctx, block)
	s.Assert().Equal(HandlerAlreadyForged, verdict.Handler)
	s.Assert().Equal(chain.DiscardedButCanBeBroadcasted, verdict.Disposition)
	s.blocks.AssertNotCalled(s.T(), "ApplyBlock", mock.Anything)
}

func (s *ProcessorSuite) TestAlreadyForgedInUnsavedBlock() {
	unsaved := s.forge(s.last)
	s.state.SetLastBlock(unsaved)
	block := s.forge(unsaved)
	block.Transactions = unsaved.Transactions
	s.blocks.On("ForgedTransactionIDs", block.TransactionIDs()).Return(chain.IdentifierList(nil), nil).Once()

	verdict := s.processor.Process(s.ctx, block)
	s.Assert().Equal(HandlerAlreadyForged, verdict.Handler)
}

func (s *ProcessorSuite) TestAcceptClearsForkedBlock() {
	block := s.forge(s.last)
	s.state.SetForkedBlock(unittest.BlockFixture(unittest.WithHeight(101)))
	s.expectAccept(block)

	verdict := s.processor.Process(s.ctx, block)
	s.Assert().Equal(chain.Accepted, verdict.Disposition)
	s.Assert().Nil(s.state.ForkedBlock())
	s.chain.AssertCalled(s.T(), "ResetWakeUp")
}

func (s *ProcessorSuite) TestPoolFailureRebuildsPool() {
	block := s.forge(s.last)
	backup := unittest.TransactionListFixture(3)
	s.blocks.On("ForgedTransactionIDs", block.TransactionIDs()).Return(chain.IdentifierList(nil), nil).Once()
	s.blocks.On("ApplyBlock", block).Return(nil).Once()
	s.pool.On("AcceptChainedBlock", mock.Anything, block).Return(errors.New("nonce mismatch")).Once()
	s.pool.On("GetAllTransactions").Return(backup).Once()
	s.pool.On("Flush").Once()
	s.pool.On("ResetWalletState", mock.Anything).Return(nil).Once()
	s.pool.On("ReaddTransactions", mock.Anything, backup).Return(nil).Once()

	verdict := s.processor.Process(s.ctx, block)
	s.Assert().Equal(chain.Accepted, verdict.Disposition)
	s.Assert().Equal(uint64(101), s.state.LastHeight())
}

// TestPoolRebuildFailureKeepsBlock fails both reconciling and rebuilding the
// pool: the block stays applied.
func (s *ProcessorSuite) TestPoolRebuildFailureKeepsBlock() {
	block := s.forge(s.last)
	backup := unittest.TransactionListFixture(2)
	s.blocks.On("ForgedTransactionIDs", block.TransactionIDs()).Return(chain.IdentifierList(nil), nil).Once()
	s.blocks.On("ApplyBlock", block).Return(nil).Once()
	s.pool.On("AcceptChainedBlock", mock.Anything, block).Return(errors.New("nonce mismatch")).Once()
	s.pool.On("GetAllTransactions").Return(backup).Once()
	s.pool.On("Flush").Once()
	s.pool.On("ResetWalletState", mock.Anything).Return(errors.New("wallets unavailable")).Once()
	s.pool.On("ReaddTransactions", mock.Anything, backup).Return(errors.New("pool full")).Once()
	s.blocks.On("SaveBlocks", []*chain.Block{block}).Return(nil).Once()
	s.chain.On("BroadcastBlock", block).Once()

	accepted, err := s.processor.ProcessBlocks(s.ctx, []*chain.Block{block})
	s.Require().NoError(err)
	s.Assert().Equal([]*chain.Block{block}, accepted)
	s.Assert().Equal(uint64(101), s.state.LastHeight())
	s.Assert().Equal(uint64(101), s.state.LastStoredBlockHeight())
}

// expectFailedApply makes storage fail while applying the block.
func (s *ProcessorSuite) expectFailedApply(block *chain.Block) {
	s.blocks.On("ForgedTransactionIDs", block.TransactionIDs()).Return(chain.IdentifierList(nil), nil).Once()
	s.blocks.On("ApplyBlock", block).Return(errors.New("badger: write failed")).Once()
}

func (s *ProcessorSuite) TestApplyFailureReverts() {
	block := s.forge(s.last)
	s.expectFailedApply(block)
	s.blocks.On("RevertBlock", block).Return(nil).Once()

	verdict := s.processor.Process(s.ctx, block)
	s.Assert().Equal(chain.Reverted, verdict.Disposition)
	s.Assert().False(verdict.Broadcastable())
	s.Assert().Equal(s.last, s.state.LastBlock())
	s.Assert().Equal(s.last, s.state.LastDownloadedBlock())
}

func (s *ProcessorSuite) TestApplyFailureCorrupted() {
	block := s.forge(s.last)
	s.expectFailedApply(block)
	s.blocks.On("RevertBlock", block).Return(errors.New("disk gone")).Once()
	s.chain.On("Fail").Once()

	accepted, err := s.processor.ProcessBlocks(s.ctx, []*chain.Block{block})
	s.Require().NoError(err)
	s.Assert().Empty(accepted)
	s.chain.AssertNotCalled(s.T(), "BroadcastBlock", mock.Anything)
}

// TestApplyNotContiguousRejected refuses a block storage cannot place on
// top of its applied height; nothing is reverted.
func (s *ProcessorSuite) TestApplyNotContiguousRejected() {
	block := s.forge(s.last)
	s.blocks.On("ForgedTransactionIDs", block.TransactionIDs()).Return(chain.IdentifierList(nil), nil).Once()
	s.blocks.On("ApplyBlock", block).Return(fmt.Errorf("cannot apply: %w", storage.ErrNotContiguous)).Once()

	verdict := s.processor.Process(s.ctx, block)
	s.Assert().Equal(chain.Rejected, verdict.Disposition)
	s.Assert().Equal(uint64(100), s.state.LastHeight())
	s.blocks.AssertNotCalled(s.T(), "RevertBlock", mock.Anything)
}

// TestDelegatesLookupFailureRejects does not skip the generator check when
// the round's delegates cannot be read.
func (s *ProcessorSuite) TestDelegatesLookupFailureRejects() {
	blocks := storagemock.NewBlocks(s.T())
	s.processor.blocks = blocks
	block := s.forge(s.last)
	block.GeneratorPublicKey = unittest.PublicKeyFixture()
	blocks.On("ActiveDelegates", s.slots.RoundOf(block.Height)).Return(nil, errors.New("db read timeout")).Once()

	verdict := s.processor.Process(s.ctx, block)
	s.Assert().Equal(chain.Rejected, verdict.Disposition)
	s.Assert().Equal(HandlerInvalidGenerator, verdict.Handler)
	s.Assert().Equal(uint64(100), s.state.LastHeight())
	blocks.AssertNotCalled(s.T(), "ApplyBlock", mock.Anything)
}

// TestUnknownRoundSkipsGeneratorCheck accepts any generator when the round
// has no delegates recorded.
func (s *ProcessorSuite) TestUnknownRoundSkipsGeneratorCheck() {
	blocks := storagemock.NewBlocks(s.T())
	s.processor.blocks = blocks
	block := s.forge(s.last)
	block.GeneratorPublicKey = unittest.PublicKeyFixture()
	blocks.On("ActiveDelegates", s.slots.RoundOf(block.Height)).Return(nil, nil).Once()
	blocks.On("ForgedTransactionIDs", block.TransactionIDs()).Return(chain.IdentifierList(nil), nil).Once()
	blocks.On("ApplyBlock", block).Return(nil).Once()
	s.pool.On("AcceptChainedBlock", mock.Anything, block).Return(nil).Once()

	verdict := s.processor.Process(s.ctx, block)
	s.Assert().Equal(chain.Accepted, verdict.Disposition)
}

// TestForgedLookupFailureNotRelayed neither accepts nor relays a block whose
// transactions could not be checked.
func (s *ProcessorSuite) TestForgedLookupFailureNotRelayed() {
	block := s.forge(s.last)
	s.blocks.On("ForgedTransactionIDs", block.TransactionIDs()).Return(nil, errors.New("db read timeout")).Once()

	accepted, err := s.processor.ProcessBlocks(s.ctx, []*chain.Block{block})
	s.Require().NoError(err)
	s.Assert().Empty(accepted)
	s.Assert().Equal(uint64(100), s.state.LastHeight())
	s.chain.AssertNotCalled(s.T(), "BroadcastBlock", mock.Anything)
	s.blocks.AssertNotCalled(s.T(), "ApplyBlock", mock.Anything)
}

// TestSaveFailureUnwinds fails persisting an accepted batch: accepted blocks
// are reverted newest first and chain state returns to the saved top.
func (s *ProcessorSuite) TestSaveFailureUnwinds() {
	b101 := s.forge(s.last)
	b102 := s.forge(b101)
	s.expectAccept(b101)
	s.expectAccept(b102)
	s.blocks.On("SaveBlocks", []*chain.Block{b101, b102}).Return(errors.New("write failed")).Once()

	var reverted []uint64
	s.blocks.On("RevertBlock", mock.Anything).Run(func(args mock.Arguments) {
		reverted = append(reverted, args.Get(0).(*chain.Block).Height)
	}).Return(nil).Twice()
	s.blocks.On("LastBlock").Return(s.last, nil).Once()
	s.blocks.On("DeleteRound", s.slots.RoundOf(100)+1).Return(nil).Once()

	accepted, err := s.processor.ProcessBlocks(s.ctx, []*chain.Block{b101, b102})
	s.Require().Error(err)
	s.Assert().Empty(accepted)
	s.Assert().Equal([]uint64{102, 101}, reverted)
	s.Assert().Equal(s.last, s.state.LastBlock())
	s.Assert().Equal(s.last, s.state.LastDownloadedBlock())
	s.chain.AssertCalled(s.T(), "ClearQueue")
	s.chain.AssertNotCalled(s.T(), "BroadcastBlock", mock.Anything)
}

func (s *ProcessorSuite) TestSaveFailureRevertFails() {
	b101 := s.forge(s.last)
	s.expectAccept(b101)
	s.blocks.On("SaveBlocks", []*chain.Block{b101}).Return(errors.New("write failed")).Once()
	s.blocks.On("RevertBlock", b101).Return(errors.New("revert failed")).Once()
	s.blocks.On("LastBlock").Return(s.last, nil).Once()
	s.blocks.On("DeleteRound", mock.Anything).Return(nil).Once()
	s.chain.On("Fail").Once()

	_, err := s.processor.ProcessBlocks(s.ctx, []*chain.Block{b101})
	s.Require().Error(err)
}

func (s *ProcessorSuite) TestNoBroadcastBeforeStarted() {
	s.state.Reset()
	s.state.SetLastBlock(s.last)
	b101 := s.forge(s.last)
	s.expectAccept(b101)
	s.blocks.On("SaveBlocks", []*chain.Block{b101}).Return(nil).Once()

	_, err := s.processor.ProcessBlocks(s.ctx, []*chain.Block{b101})
	s.Require().NoError(err)
	s.chain.AssertNotCalled(s.T(), "BroadcastBlock", mock.Anything)
}

func TestNotReadyCounter(t *testing.T) {
	counter := NewNotReadyCounter(5)
	block := unittest.BlockFixture()
	other := unittest.BlockFixture()

	for i := 0; i < 5; i++ {
		require.False(t, counter.Increment(block))
	}
	// a different block restarts the count
	require.False(t, counter.Increment(other))
	for i := 0; i < 4; i++ {
		require.False(t, counter.Increment(block))
	}
	require.False(t, counter.Increment(block))
	assert.True(t, counter.Increment(block))
	assert.False(t, counter.Increment(block))

	counter.Reset()
	for i := 0; i < 5; i++ {
		require.False(t, counter.Increment(block))
	}
	assert.True(t, counter.Increment(block))
}

package consensus_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/foldchain/blockchain/foundation/blockchain/accumulator"
	"github.com/foldchain/blockchain/foundation/blockchain/consensus"
	"github.com/foldchain/blockchain/foundation/blockchain/database"
	"github.com/foldchain/blockchain/foundation/blockchain/field"
	"github.com/foldchain/blockchain/foundation/blockchain/genesis"
	"github.com/foldchain/blockchain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// Producer keys for building competing forks.
const (
	pkHexKeyA = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	pkHexKeyB = "9f332e3700d8fc2446eaf6d15034cf96e0c2745e40353deef032a5dbf1dfed93"
)

func testGenesis(w uint64, depth uint64, domain int) genesis.Genesis {
	return genesis.Genesis{
		Date:              time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		ChainID:           1,
		SlotDuration:      1,
		DensityWindow:     w,
		ConfirmationDepth: depth,
		RecordsPerBlock:   100,
		DomainSize:        domain,
		ExtensionFactor:   4,
	}
}

func newEngine(t *testing.T, gen genesis.Genesis) *consensus.Engine {
	engine, err := consensus.New(consensus.Config{Genesis: gen})
	if err != nil {
		t.Fatalf("unable to construct the engine: %v", err)
	}
	return engine
}

// produceFork builds one block per slot, each extending the previous,
// rooted at the genesis block.
func produceFork(t *testing.T, gen genesis.Genesis, pkHex string, slots []uint64) []database.Block {
	pk, err := crypto.HexToECDSA(pkHex)
	if err != nil {
		t.Fatalf("unable to parse private key: %v", err)
	}

	parent, err := database.GenesisBlock(gen)
	if err != nil {
		t.Fatalf("unable to construct genesis block: %v", err)
	}

	blocks := make([]database.Block, 0, len(slots))
	for _, slot := range slots {
		block, err := database.ProduceBlock(pk, slot, parent, nil, func(v string, args ...any) {})
		if err != nil {
			t.Fatalf("unable to produce block at slot %d: %v", slot, err)
		}

		blocks = append(blocks, block)
		parent = block
	}

	return blocks
}

func advance(engine *consensus.Engine, n int) consensus.SlotReport {
	var report consensus.SlotReport
	for i := 0; i < n; i++ {
		report = engine.AdvanceSlot()
	}
	return report
}

func submitAll(t *testing.T, engine *consensus.Engine, blocks []database.Block) consensus.Decision {
	var decision consensus.Decision
	for _, block := range blocks {
		var err error
		decision, err = engine.SubmitBlock(block)
		if err != nil {
			t.Fatalf("unable to submit block at slot %d: %v", block.Header.Slot, err)
		}
	}
	return decision
}

// =============================================================================

func Test_DensityBoundary(t *testing.T) {
	t.Log("Given the need to score a chain over the trailing window.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen 3 blocks fill a window of 10 slots.", testID)
		{
			gen := testGenesis(10, 5, 64)
			engine := newEngine(t, gen)

			if engine.Head() != signature.ZeroHash {
				t.Fatalf("\t%s\tTest %d:\tShould start with the zero hash as head.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould start with the zero hash as head.", success, testID)

			advance(engine, 3)
			blocks := produceFork(t, gen, pkHexKeyA, []uint64{1, 2, 3})
			decision := submitAll(t, engine, blocks)

			if decision.Status != consensus.StatusValidated {
				t.Fatalf("\t%s\tTest %d:\tShould validate every block, got status %q.", failed, testID, decision.Status)
			}
			t.Logf("\t%s\tTest %d:\tShould validate every block.", success, testID)

			if decision.Density != 0.3 {
				t.Fatalf("\t%s\tTest %d:\tShould score density 0.3 exactly, got %v.", failed, testID, decision.Density)
			}
			t.Logf("\t%s\tTest %d:\tShould score density 0.3 exactly.", success, testID)

			density, err := engine.DensityOf(blocks[2].Hash())
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to read the tip density: %v", failed, testID, err)
			}
			if density != 0.3 {
				t.Fatalf("\t%s\tTest %d:\tShould read density 0.3 exactly, got %v.", failed, testID, density)
			}
			t.Logf("\t%s\tTest %d:\tShould read density 0.3 exactly.", success, testID)

			window := engine.Window()
			if window.Slot != 3 || window.Size != 10 {
				t.Fatalf("\t%s\tTest %d:\tShould report window slot 3 size 10, got %+v.", failed, testID, window)
			}
			t.Logf("\t%s\tTest %d:\tShould report the current window bounds.", success, testID)

			if engine.Head() != blocks[2].Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould select the chain tip as head.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould select the chain tip as head.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen the window slides past old blocks.", testID)
		{
			gen := testGenesis(4, 50, 64)
			engine := newEngine(t, gen)

			advance(engine, 3)
			blocks := produceFork(t, gen, pkHexKeyA, []uint64{1, 2, 3})
			submitAll(t, engine, blocks)

			advance(engine, 3)

			// At slot 6 with W = 4 the window covers slots 3..6, so only
			// the slot 3 block still counts.
			density, err := engine.DensityOf(blocks[2].Hash())
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to read the tip density: %v", failed, testID, err)
			}
			if density != 0.25 {
				t.Fatalf("\t%s\tTest %d:\tShould score only in-window blocks, got %v.", failed, testID, density)
			}
			t.Logf("\t%s\tTest %d:\tShould score only in-window blocks.", success, testID)
		}
	}
}

func Test_SubmitChecks(t *testing.T) {
	t.Log("Given the need to reject blocks that violate chain ordering.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a block references an unknown parent.", testID)
		{
			gen := testGenesis(10, 50, 64)
			engine := newEngine(t, gen)
			advance(engine, 5)

			pk, err := crypto.HexToECDSA(pkHexKeyA)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to parse the private key: %v", failed, testID, err)
			}

			// A parent the engine never saw: a real block that was not
			// submitted.
			orphanParent := produceFork(t, gen, pkHexKeyB, []uint64{1})[0]

			block, err := database.ProduceBlock(pk, 2, orphanParent, nil, func(v string, args ...any) {})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to produce the block: %v", failed, testID, err)
			}

			if _, err := engine.SubmitBlock(block); !errors.Is(err, consensus.ErrUnknownParent) {
				t.Fatalf("\t%s\tTest %d:\tShould reject with unknown parent, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject with unknown parent.", success, testID)

			status, err := engine.Status(block.Hash())
			if err != nil || status != consensus.StatusOrphaned {
				t.Fatalf("\t%s\tTest %d:\tShould record the rejected block as orphaned.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould record the rejected block as orphaned.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen a block does not advance its parent slot.", testID)
		{
			gen := testGenesis(10, 50, 64)
			engine := newEngine(t, gen)
			advance(engine, 5)

			blocks := produceFork(t, gen, pkHexKeyA, []uint64{2})
			submitAll(t, engine, blocks)

			pk, err := crypto.HexToECDSA(pkHexKeyA)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to parse the private key: %v", failed, testID, err)
			}

			block, err := database.ProduceBlock(pk, 2, blocks[0], nil, func(v string, args ...any) {})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to produce the block: %v", failed, testID, err)
			}

			if _, err := engine.SubmitBlock(block); !errors.Is(err, consensus.ErrSlotOrderViolation) {
				t.Fatalf("\t%s\tTest %d:\tShould reject with slot order violation, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject with slot order violation.", success, testID)
		}

		testID = 2
		t.Logf("\tTest %d:\tWhen a block claims a slot beyond the current bound.", testID)
		{
			gen := testGenesis(10, 50, 64)
			engine := newEngine(t, gen)
			advance(engine, 3)

			blocks := produceFork(t, gen, pkHexKeyA, []uint64{5})

			if _, err := engine.SubmitBlock(blocks[0]); !errors.Is(err, consensus.ErrFutureSlot) {
				t.Fatalf("\t%s\tTest %d:\tShould reject with future slot, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject with future slot.", success, testID)

			status, err := engine.Status(blocks[0].Hash())
			if err != nil || status != consensus.StatusOrphaned {
				t.Fatalf("\t%s\tTest %d:\tShould never let a future block reach validated.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould never let a future block reach validated.", success, testID)

			// Rejection is recorded. The delivery layer owns retries, and
			// a resubmission after the window catches up reports the same
			// outcome.
			advance(engine, 4)
			if _, err := engine.SubmitBlock(blocks[0]); !errors.Is(err, consensus.ErrFutureSlot) {
				t.Fatalf("\t%s\tTest %d:\tShould keep reporting the recorded rejection, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould keep reporting the recorded rejection.", success, testID)
		}

		testID = 3
		t.Logf("\tTest %d:\tWhen a block is submitted twice.", testID)
		{
			gen := testGenesis(10, 50, 64)
			engine := newEngine(t, gen)
			advance(engine, 1)

			blocks := produceFork(t, gen, pkHexKeyA, []uint64{1})
			submitAll(t, engine, blocks)

			decision, err := engine.SubmitBlock(blocks[0])
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould accept a duplicate submission: %v", failed, testID, err)
			}
			if decision.Status != consensus.StatusValidated || decision.HeadChanged {
				t.Fatalf("\t%s\tTest %d:\tShould report the recorded outcome unchanged.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould report the recorded outcome unchanged.", success, testID)
		}
	}
}

func Test_ProofChecks(t *testing.T) {
	t.Log("Given the need to reject blocks whose accumulator state is wrong.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a block carries a state with extra members.", testID)
		{
			gen := testGenesis(10, 50, 64)
			engine := newEngine(t, gen)
			advance(engine, 5)

			blocks := produceFork(t, gen, pkHexKeyA, []uint64{1, 2})
			submitAll(t, engine, blocks[:1])

			tampered := blocks[1]
			state, err := tampered.Proof.Append(field.New(99))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build the tampered state: %v", failed, testID, err)
			}
			tampered.Proof = state

			if _, err := engine.SubmitBlock(tampered); !errors.Is(err, accumulator.ErrMembershipFailed) {
				t.Fatalf("\t%s\tTest %d:\tShould reject with membership failed, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject with membership failed.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen a block carries a state of the wrong shape.", testID)
		{
			gen := testGenesis(10, 50, 64)
			engine := newEngine(t, gen)
			advance(engine, 5)

			blocks := produceFork(t, gen, pkHexKeyA, []uint64{1, 2})
			submitAll(t, engine, blocks[:1])

			narrow, err := accumulator.New(accumulator.Params{DomainSize: 32, ExtensionFactor: 4})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build the narrow state: %v", failed, testID, err)
			}

			tampered := blocks[1]
			tampered.Proof = narrow

			if _, err := engine.SubmitBlock(tampered); !errors.Is(err, accumulator.ErrSizeMismatch) {
				t.Fatalf("\t%s\tTest %d:\tShould reject with size mismatch, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject with size mismatch.", success, testID)
		}

		testID = 2
		t.Logf("\tTest %d:\tWhen a chain reaches the accumulator capacity.", testID)
		{
			gen := testGenesis(10, 50, 8)
			engine := newEngine(t, gen)
			advance(engine, 5)

			// Domain 8 at extension factor 4 bounds the chain at 2 blocks.
			blocks := produceFork(t, gen, pkHexKeyA, []uint64{1, 2})
			submitAll(t, engine, blocks)

			pk, err := crypto.HexToECDSA(pkHexKeyA)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to parse the private key: %v", failed, testID, err)
			}

			header := database.BlockHeader{
				ParentBlockID: blocks[1].Hash(),
				Slot:          3,
				TimeStamp:     uint64(time.Now().UTC().Unix()),
				ProducerID:    database.PublicKeyToAccountID(pk.PublicKey),
				RecordsRoot:   signature.ZeroHash,
			}

			v, r, s, err := signature.Sign(header, pk)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign the header: %v", failed, testID, err)
			}

			block := database.Block{Header: header, Proof: blocks[1].Proof, V: v, R: r, S: s}

			if _, err := engine.SubmitBlock(block); !errors.Is(err, accumulator.ErrDegreeExceeded) {
				t.Fatalf("\t%s\tTest %d:\tShould reject with degree exceeded, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject with degree exceeded.", success, testID)
		}

		testID = 3
		t.Logf("\tTest %d:\tWhen a block signature does not match its producer.", testID)
		{
			gen := testGenesis(10, 50, 64)
			engine := newEngine(t, gen)
			advance(engine, 5)

			blocks := produceFork(t, gen, pkHexKeyA, []uint64{1})

			forged := blocks[0]
			forged.Header.ProducerID = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"

			if _, err := engine.SubmitBlock(forged); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject a block with a forged producer.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a block with a forged producer.", success, testID)
		}
	}
}

func Test_ForkChoice(t *testing.T) {
	t.Log("Given the need to select the canonical head among competing forks.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen fork densities differ over a window of 20.", testID)
		{
			gen := testGenesis(20, 50, 64)
			engine := newEngine(t, gen)
			advance(engine, 8)

			forkA := produceFork(t, gen, pkHexKeyA, []uint64{1, 2, 3, 4, 5, 6, 7, 8})
			forkB := produceFork(t, gen, pkHexKeyB, []uint64{1, 2, 3, 4, 5, 6})
			submitAll(t, engine, forkA)
			submitAll(t, engine, forkB)

			if engine.Head() != forkA[7].Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould select the denser fork's tip.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould select the denser fork's tip.", success, testID)

			densityA, err := engine.DensityOf(forkA[7].Hash())
			if err != nil || densityA != 0.4 {
				t.Fatalf("\t%s\tTest %d:\tShould score fork A at 0.4, got %v.", failed, testID, densityA)
			}
			densityB, err := engine.DensityOf(forkB[5].Hash())
			if err != nil || densityB != 0.3 {
				t.Fatalf("\t%s\tTest %d:\tShould score fork B at 0.3, got %v.", failed, testID, densityB)
			}
			t.Logf("\t%s\tTest %d:\tShould score the forks 0.4 and 0.3.", success, testID)

			chains := engine.Chains()
			if len(chains) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould report 2 competing chains, got %d.", failed, testID, len(chains))
			}
			if chains[0].Tip != forkA[7].Hash() || chains[0].WindowCount != 8 || chains[1].WindowCount != 6 {
				t.Fatalf("\t%s\tTest %d:\tShould order chains by window count.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould order chains by window count.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen densities tie and lengths differ.", testID)
		{
			gen := testGenesis(4, 50, 64)
			engine := newEngine(t, gen)
			advance(engine, 10)

			// Window covers slots 7..10. Fork A has one extra block below
			// the window: equal counts, greater length.
			forkA := produceFork(t, gen, pkHexKeyA, []uint64{2, 7, 8, 9, 10})
			forkB := produceFork(t, gen, pkHexKeyB, []uint64{7, 8, 9, 10})
			submitAll(t, engine, forkA)
			submitAll(t, engine, forkB)

			if engine.Head() != forkA[4].Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould break the density tie by chain length.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould break the density tie by chain length.", success, testID)
		}

		testID = 2
		t.Logf("\tTest %d:\tWhen densities and lengths both tie.", testID)
		{
			gen := testGenesis(10, 50, 64)
			engine := newEngine(t, gen)
			advance(engine, 1)

			blockA := produceFork(t, gen, pkHexKeyA, []uint64{1})[0]
			blockB := produceFork(t, gen, pkHexKeyB, []uint64{1})[0]
			submitAll(t, engine, []database.Block{blockA, blockB})

			expected := blockA.Hash()
			if blockB.Hash() < expected {
				expected = blockB.Hash()
			}

			if engine.Head() != expected {
				t.Fatalf("\t%s\tTest %d:\tShould break the full tie by smallest block id.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould break the full tie by smallest block id.", success, testID)
		}
	}
}

func Test_Determinism(t *testing.T) {
	t.Log("Given the need for independent engines to agree on the head.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the same block set arrives in different orders.", testID)
		{
			gen := testGenesis(10, 50, 64)

			forkA := produceFork(t, gen, pkHexKeyA, []uint64{1, 2, 3})
			forkB := produceFork(t, gen, pkHexKeyB, []uint64{1, 2})

			engine1 := newEngine(t, gen)
			advance(engine1, 3)
			submitAll(t, engine1, forkA)
			submitAll(t, engine1, forkB)

			engine2 := newEngine(t, gen)
			advance(engine2, 3)
			submitAll(t, engine2, forkB)
			submitAll(t, engine2, forkA)

			if engine1.Head() != engine2.Head() {
				t.Logf("\t%s\tTest %d:\tengine1: %s", failed, testID, engine1.Head())
				t.Logf("\t%s\tTest %d:\tengine2: %s", failed, testID, engine2.Head())
				t.Fatalf("\t%s\tTest %d:\tShould agree on the canonical head.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould agree on the canonical head.", success, testID)

			chains1 := engine1.Chains()
			chains2 := engine2.Chains()
			if len(chains1) != len(chains2) {
				t.Fatalf("\t%s\tTest %d:\tShould agree on the chain count.", failed, testID)
			}
			for i := range chains1 {
				if chains1[i] != chains2[i] {
					t.Fatalf("\t%s\tTest %d:\tShould agree on chain %d.", failed, testID, i)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould agree on the full fork choice table.", success, testID)
		}
	}
}

func Test_Finality(t *testing.T) {
	t.Log("Given the need to finalize buried blocks and orphan losing forks.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the head chain holds maximal density.", testID)
		{
			gen := testGenesis(10, 2, 64)
			engine := newEngine(t, gen)

			forkA := produceFork(t, gen, pkHexKeyA, []uint64{1, 2, 3, 4})
			forkB := produceFork(t, gen, pkHexKeyB, []uint64{1, 2})

			advance(engine, 1)
			submitAll(t, engine, forkA[:1])
			advance(engine, 1)
			submitAll(t, engine, forkA[1:2])
			advance(engine, 1)
			submitAll(t, engine, forkA[2:3])
			submitAll(t, engine, forkB)

			if engine.Head() != forkA[2].Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould hold fork A as canonical.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould hold fork A as canonical.", success, testID)

			// The fourth advance pushes the dominance streak past the
			// confirmation depth with three blocks on the canonical chain,
			// burying the first block deep enough to finalize.
			report := advance(engine, 1)

			if len(report.Finalized) != 1 || report.Finalized[0] != forkA[0].Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould finalize the deepest canonical block, got %v.", failed, testID, report.Finalized)
			}
			t.Logf("\t%s\tTest %d:\tShould finalize the deepest canonical block.", success, testID)

			if len(report.Orphaned) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould orphan both losing fork blocks, got %d.", failed, testID, len(report.Orphaned))
			}
			t.Logf("\t%s\tTest %d:\tShould orphan both losing fork blocks.", success, testID)

			status, err := engine.Status(forkA[0].Hash())
			if err != nil || status != consensus.StatusFinalized {
				t.Fatalf("\t%s\tTest %d:\tShould report the buried block finalized.", failed, testID)
			}
			status, err = engine.Status(forkB[0].Hash())
			if err != nil || status != consensus.StatusOrphaned {
				t.Fatalf("\t%s\tTest %d:\tShould report the losing fork orphaned.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould report the one way lifecycle states.", success, testID)

			// Extending the orphaned fork is no longer possible.
			pk, err := crypto.HexToECDSA(pkHexKeyB)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to parse the private key: %v", failed, testID, err)
			}
			block, err := database.ProduceBlock(pk, 3, forkB[1], nil, func(v string, args ...any) {})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to produce onto the orphan: %v", failed, testID, err)
			}
			if _, err := engine.SubmitBlock(block); !errors.Is(err, consensus.ErrUnknownParent) {
				t.Fatalf("\t%s\tTest %d:\tShould refuse to extend an orphaned fork, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse to extend an orphaned fork.", success, testID)

			pruned := engine.PruneOrphaned()
			if len(pruned) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould prune both orphaned blocks, got %d.", failed, testID, len(pruned))
			}
			if _, err := engine.Status(forkB[0].Hash()); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould forget pruned blocks.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould prune the orphaned fork.", success, testID)

			// Continued dominance keeps burying the chain one block at a
			// time.
			submitAll(t, engine, forkA[3:4])
			report = advance(engine, 1)
			if len(report.Finalized) != 1 || report.Finalized[0] != forkA[1].Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould finalize the next buried block, got %v.", failed, testID, report.Finalized)
			}
			t.Logf("\t%s\tTest %d:\tShould finalize the next buried block.", success, testID)
		}
	}
}

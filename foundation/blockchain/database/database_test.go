package database_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/foldchain/blockchain/foundation/blockchain/database"
	"github.com/foldchain/blockchain/foundation/blockchain/database/storage"
	"github.com/foldchain/blockchain/foundation/blockchain/genesis"
	"github.com/foldchain/blockchain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// The address derived from this private key.
const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	from     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

func testGenesis() genesis.Genesis {
	return genesis.Genesis{
		Date:              time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		ChainID:           1,
		SlotDuration:      1,
		DensityWindow:     50,
		ConfirmationDepth: 6,
		RecordsPerBlock:   100,
		DomainSize:        32,
		ExtensionFactor:   4,
	}
}

// =============================================================================

func Test_SignedRecords(t *testing.T) {
	type table struct {
		name    string
		chainID uint16
		nonce   uint64
		toID    database.AccountID
		value   uint64
	}

	tt := []table{
		{
			name:    "basic",
			chainID: 1,
			nonce:   1,
			toID:    "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32",
			value:   100,
		},
	}

	t.Log("Given the need to validate signed records.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling record %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					pk, err := crypto.HexToECDSA(pkHexKey)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to parse the private key: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to parse the private key.", success, testID)

					rec, err := database.NewRecord(tst.chainID, tst.nonce, tst.toID, tst.value)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to create a record: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to create a record.", success, testID)

					signedRec, err := rec.Sign(pk)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to sign the record: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to sign the record.", success, testID)

					if err := signedRec.Validate(tst.chainID); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to validate the signed record: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to validate the signed record.", success, testID)

					if err := signedRec.Validate(tst.chainID + 1); err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould reject a record for another chain.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reject a record for another chain.", success, testID)

					fromID, err := signedRec.FromAccount()
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to recover the sender: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to recover the sender.", success, testID)

					if fromID != database.AccountID(from) {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, fromID)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, from)
						t.Fatalf("\t%s\tTest %d:\tShould recover the signing account.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould recover the signing account.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_ProduceBlock(t *testing.T) {
	t.Log("Given the need to produce and validate blocks.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen producing a block on top of genesis.", testID)
		{
			gen := testGenesis()

			pk, err := crypto.HexToECDSA(pkHexKey)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to parse the private key: %v", failed, testID, err)
			}

			parent, err := database.GenesisBlock(gen)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the genesis block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct the genesis block.", success, testID)

			records := signRecords(t, gen.ChainID, 3)

			block, err := database.ProduceBlock(pk, 1, parent, records, func(v string, args ...any) {})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to produce a block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to produce a block.", success, testID)

			if block.Header.ParentBlockID != signature.ZeroHash {
				t.Fatalf("\t%s\tTest %d:\tShould link the block to the zero hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould link the block to the zero hash.", success, testID)

			if err := block.ValidateSignature(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to validate the block signature: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to validate the block signature.", success, testID)

			if block.Header.ProducerID != database.AccountID(from) {
				t.Fatalf("\t%s\tTest %d:\tShould stamp the producer account into the header.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould stamp the producer account into the header.", success, testID)

			if err := block.ValidateRecordsRoot(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to validate the records root: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to validate the records root.", success, testID)

			if got := database.DigestFromHash(block.Hash()); !got.Equal(block.Digest()) {
				t.Fatalf("\t%s\tTest %d:\tShould derive the digest from the block hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould derive the digest from the block hash.", success, testID)

			expProof, err := parent.Proof.Append(block.Digest())
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to append the digest: %v", failed, testID, err)
			}
			if !block.Proof.Equal(expProof) {
				t.Fatalf("\t%s\tTest %d:\tShould carry the parent proof extended by the block digest.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould carry the parent proof extended by the block digest.", success, testID)

			if block.Proof.Count != 1 {
				t.Fatalf("\t%s\tTest %d:\tShould count one accumulated block, got %d.", failed, testID, block.Proof.Count)
			}
			t.Logf("\t%s\tTest %d:\tShould count one accumulated block.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen producing a block with no records.", testID)
		{
			gen := testGenesis()

			pk, err := crypto.HexToECDSA(pkHexKey)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to parse the private key: %v", failed, testID, err)
			}

			parent, err := database.GenesisBlock(gen)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the genesis block: %v", failed, testID, err)
			}

			block, err := database.ProduceBlock(pk, 1, parent, nil, func(v string, args ...any) {})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to produce an empty block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to produce an empty block.", success, testID)

			if block.Header.RecordsRoot != signature.ZeroHash {
				t.Fatalf("\t%s\tTest %d:\tShould carry the zero hash as the records root.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould carry the zero hash as the records root.", success, testID)

			if err := block.ValidateRecordsRoot(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to validate the empty records root: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to validate the empty records root.", success, testID)
		}
	}
}

func Test_BlockDataRoundTrip(t *testing.T) {
	t.Log("Given the need to store and reload blocks without changing their identity.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen serializing a produced block.", testID)
		{
			gen := testGenesis()
			block := produceChain(t, gen, 1)[0]

			blockData := database.NewBlockData(block, "pending")

			data, err := json.Marshal(blockData)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to marshal block data: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to marshal block data.", success, testID)

			var decoded database.BlockData
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to unmarshal block data: %v", failed, testID, err)
			}

			reloaded, err := database.ToBlock(decoded)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to rebuild the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to rebuild the block.", success, testID)

			if reloaded.Hash() != block.Hash() {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, reloaded.Hash())
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, block.Hash())
				t.Fatalf("\t%s\tTest %d:\tShould preserve the block id across the round trip.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould preserve the block id across the round trip.", success, testID)

			if err := reloaded.ValidateRecordsRoot(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould rebuild the record tree to the committed root: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould rebuild the record tree to the committed root.", success, testID)

			if !reloaded.Proof.Equal(block.Proof) {
				t.Fatalf("\t%s\tTest %d:\tShould preserve the accumulator state.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould preserve the accumulator state.", success, testID)

			if err := reloaded.ValidateSignature(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould preserve the producer signature: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould preserve the producer signature.", success, testID)
		}
	}
}

func Test_Database(t *testing.T) {
	type table struct {
		name string
		new  func(t *testing.T) database.Serializer
	}

	tt := []table{
		{
			name: "memory",
			new: func(t *testing.T) database.Serializer {
				strg, err := storage.NewMemory()
				if err != nil {
					t.Fatalf("unable to create memory storage: %v", err)
				}
				return strg
			},
		},
		{
			name: "disk",
			new: func(t *testing.T) database.Serializer {
				strg, err := storage.NewDisk(t.TempDir())
				if err != nil {
					t.Fatalf("unable to create disk storage: %v", err)
				}
				return strg
			},
		},
	}

	t.Log("Given the need to persist and reload a chain of blocks.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen using %s storage.", testID, tst.name)
			{
				f := func(t *testing.T) {
					gen := testGenesis()
					strg := tst.new(t)

					db, err := database.New(gen, strg, func(v string, args ...any) {})
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to open an empty database: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to open an empty database.", success, testID)

					blocks := produceChain(t, gen, 3)
					for _, block := range blocks {
						if err := db.Write(database.NewBlockData(block, "pending")); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to write a block: %v", failed, testID, err)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould be able to write the chain.", success, testID)

					block, err := db.GetBlock(blocks[1].Hash())
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to read a block by id: %v", failed, testID, err)
					}
					if block.Header.Slot != blocks[1].Header.Slot {
						t.Fatalf("\t%s\tTest %d:\tShould read back the block that was written.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to read a block by id.", success, testID)

					if err := db.UpdateStatus(blocks[0].Hash(), "finalized"); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to update a block status: %v", failed, testID, err)
					}
					blockData, err := db.GetBlockData(blocks[0].Hash())
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to read back block data: %v", failed, testID, err)
					}
					if blockData.Status != "finalized" {
						t.Fatalf("\t%s\tTest %d:\tShould persist the updated status, got %q.", failed, testID, blockData.Status)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to update a block status.", success, testID)

					all := db.AllBlocks()
					if len(all) != len(blocks) {
						t.Fatalf("\t%s\tTest %d:\tShould hold %d blocks, got %d.", failed, testID, len(blocks), len(all))
					}
					for i := 1; i < len(all); i++ {
						if all[i-1].Header.Slot > all[i].Header.Slot {
							t.Fatalf("\t%s\tTest %d:\tShould order blocks by slot.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould order blocks by slot.", success, testID)

					// Reopen over the same storage and make sure the chain
					// reloads with every status intact.
					db2, err := database.New(gen, strg, func(v string, args ...any) {})
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to reload the database: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to reload the database.", success, testID)

					if len(db2.AllBlocks()) != len(blocks) {
						t.Fatalf("\t%s\tTest %d:\tShould reload every stored block.", failed, testID)
					}
					blockData, err = db2.GetBlockData(blocks[0].Hash())
					if err != nil || blockData.Status != "finalized" {
						t.Fatalf("\t%s\tTest %d:\tShould reload the stored status.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reload every stored block with its status.", success, testID)

					if err := db2.Reset(); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to reset the database: %v", failed, testID, err)
					}
					if len(db2.AllBlocks()) != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould drop every block on reset.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to reset the database.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_CorruptBlockRejected(t *testing.T) {
	t.Log("Given the need to reject tampered blocks at reload.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen a stored block id does not match its contents.", testID)
		{
			gen := testGenesis()

			strg, err := storage.NewMemory()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to create memory storage: %v", failed, testID, err)
			}

			block := produceChain(t, gen, 1)[0]
			blockData := database.NewBlockData(block, "pending")
			blockData.Header.Slot++

			if err := strg.Write(blockData); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write the tampered block: %v", failed, testID, err)
			}

			if _, err := database.New(gen, strg, func(v string, args ...any) {}); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould refuse to load a block whose id does not match.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse to load a block whose id does not match.", success, testID)
		}
	}
}

// =============================================================================

// signRecords produces n signed records against the configured chain id.
func signRecords(t *testing.T, chainID uint16, n int) []database.SignedRecord {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("unable to parse private key: %v", err)
	}

	records := make([]database.SignedRecord, 0, n)
	for i := 0; i < n; i++ {
		rec, err := database.NewRecord(chainID, uint64(i+1), "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", uint64(100*(i+1)))
		if err != nil {
			t.Fatalf("unable to create record: %v", err)
		}

		signedRec, err := rec.Sign(pk)
		if err != nil {
			t.Fatalf("unable to sign record: %v", err)
		}

		records = append(records, signedRec)
	}

	return records
}

// produceChain produces n blocks, each extending the previous, starting
// from the genesis block.
func produceChain(t *testing.T, gen genesis.Genesis, n int) []database.Block {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("unable to parse private key: %v", err)
	}

	parent, err := database.GenesisBlock(gen)
	if err != nil {
		t.Fatalf("unable to construct genesis block: %v", err)
	}

	blocks := make([]database.Block, 0, n)
	for i := 0; i < n; i++ {
		records := signRecords(t, gen.ChainID, 2)

		block, err := database.ProduceBlock(pk, uint64(i+1), parent, records, func(v string, args ...any) {})
		if err != nil {
			t.Fatalf("unable to produce block %d: %v", i+1, err)
		}

		blocks = append(blocks, block)
		parent = block
	}

	return blocks
}

// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/foldchain/blockchain/business/sys/validate"
	"github.com/foldchain/blockchain/business/web/errs"
	"github.com/foldchain/blockchain/foundation/blockchain/database"
	"github.com/foldchain/blockchain/foundation/blockchain/state"
	"github.com/foldchain/blockchain/foundation/events"
	"github.com/foldchain/blockchain/foundation/nameservice"
	"github.com/foldchain/blockchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Head returns the canonical head and the window it was chosen under.
func (h Handlers) Head(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	headBlock, err := h.State.RetrieveCanonicalHead()
	if err != nil {
		return err
	}

	density, err := h.State.QueryDensity(headBlock.Hash())
	if err != nil {
		density = 0
	}

	hd := head{
		Hash:    headBlock.Hash(),
		Slot:    headBlock.Header.Slot,
		Density: density,
		Window:  h.State.RetrieveWindow(),
		Pool:    h.State.QueryPoolLength(),
	}

	return web.Respond(ctx, w, hd, http.StatusOK)
}

// Chains returns every viable chain ordered by the fork choice.
func (h Handlers) Chains(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chains := h.State.RetrieveChains()
	return web.Respond(ctx, w, chains, http.StatusOK)
}

// BlocksBySlot returns the blocks produced inside the specified slot
// range, any fork included.
func (h Handlers) BlocksBySlot(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, to, err := slotRange(h.State, web.Param(r, "from"), web.Param(r, "to"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	dbBlocks := h.State.QueryBlocksBySlot(from, to)
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blocks := make([]block, len(dbBlocks))
	for i, blockData := range dbBlocks {
		blocks[i] = h.toBlock(blockData)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// BlocksByAccount returns the blocks carrying a record that involves the
// specified account.
func (h Handlers) BlocksByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := database.ToAccountID(web.Param(r, "account"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	dbBlocks := h.State.QueryBlocksByAccount(accountID)
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blocks := make([]block, len(dbBlocks))
	for i, blockData := range dbBlocks {
		blocks[i] = h.toBlock(blockData)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// BlockStatus returns the lifecycle status and density for a single block.
func (h Handlers) BlockStatus(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	status, err := h.State.QueryStatus(id)
	if err != nil {
		return errs.NewTrusted(err, http.StatusNotFound)
	}

	// A block pruned from the consensus tree keeps its stored status but
	// no longer scores a density.
	density, err := h.State.QueryDensity(id)
	if err != nil {
		density = 0
	}

	bs := blockStatus{
		Hash:    id,
		Status:  string(status),
		Density: density,
	}

	return web.Respond(ctx, w, bs, http.StatusOK)
}

// AccumulatorProof returns the accumulator state committing the canonical
// blocks inside the specified slot range.
func (h Handlers) AccumulatorProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, to, err := slotRange(h.State, web.Param(r, "from"), web.Param(r, "to"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	proof, err := h.State.AccumulatorProof(from, to)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, proof, http.StatusOK)
}

// MembershipWitness returns a witness that the specified block is
// committed by the canonical chain, along with the state to verify it
// against.
func (h Handlers) MembershipWitness(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	witness, headState, err := h.State.MembershipWitness(id)
	if err != nil {
		if errors.Is(err, state.ErrNotCanonical) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	proof := membershipProof{
		BlockID: id,
		Digest:  database.DigestFromHash(id),
		Witness: witness,
		State:   headState,
	}

	return web.Respond(ctx, w, proof, http.StatusOK)
}

// VerifyProof checks a membership witness against an accumulator state.
// The check is stateless, the chain is not consulted.
func (h Handlers) VerifyProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req verifyRequest
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	resp := verifyResponse{
		Verified: h.State.VerifyProof(req.State, req.Digest, req.Witness),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Pool returns the set of records waiting on a block.
func (h Handlers) Pool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	poolRecords := h.State.RetrievePoolRecords()

	records := make([]record, len(poolRecords))
	for i, rec := range poolRecords {
		records[i] = h.toRecord(rec)
	}

	return web.Respond(ctx, w, records, http.StatusOK)
}

// SubmitRecord adds a new client record to the pool.
func (h Handlers) SubmitRecord(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var app newRecord
	if err := web.Decode(r, &app); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	if err := validate.Check(app); err != nil {
		return fmt.Errorf("validating record: %w", err)
	}

	signedRec := toSignedRecord(app)

	h.Log.Infow("add record", "traceid", v.TraceID, "from:nonce", signedRec, "to", signedRec.ToID, "value", signedRec.Value)
	if err := h.State.UpsertRecord(signedRec); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "record added to pool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// toRecord builds the client view of a signed record.
func (h Handlers) toRecord(rec database.SignedRecord) record {
	fromAccount, _ := rec.FromAccount()

	return record{
		FromAccount: fromAccount,
		FromName:    h.NS.Lookup(fromAccount),
		To:          rec.ToID,
		ToName:      h.NS.Lookup(rec.ToID),
		ChainID:     rec.ChainID,
		Nonce:       rec.Nonce,
		Value:       rec.Value,
		Sig:         rec.SignatureString(),
	}
}

// toBlock builds the client view of a stored block.
func (h Handlers) toBlock(blockData database.BlockData) block {
	records := make([]record, len(blockData.Records))
	for i, rec := range blockData.Records {
		records[i] = h.toRecord(rec)
	}

	return block{
		Hash:          blockData.Hash,
		ParentBlockID: blockData.Header.ParentBlockID,
		ProducerID:    blockData.Header.ProducerID,
		ProducerName:  h.NS.Lookup(blockData.Header.ProducerID),
		Slot:          blockData.Header.Slot,
		TimeStamp:     blockData.Header.TimeStamp,
		RecordsRoot:   blockData.Header.RecordsRoot,
		Status:        blockData.Status,
		Records:       records,
	}
}

// slotRange parses the from/to parameters of a slot range route. The
// literal "latest" or an empty value maps to the current slot.
func slotRange(st *state.State, fromStr string, toStr string) (uint64, uint64, error) {
	latest := st.RetrieveWindow().Slot

	from := latest
	if fromStr != "latest" && fromStr != "" {
		var err error
		from, err = strconv.ParseUint(fromStr, 10, 64)
		if err != nil {
			return 0, 0, err
		}
	}

	to := latest
	if toStr != "latest" && toStr != "" {
		var err error
		to, err = strconv.ParseUint(toStr, 10, 64)
		if err != nil {
			return 0, 0, err
		}
	}

	if from > to {
		return 0, 0, errors.New("from greater than to")
	}

	return from, to, nil
}

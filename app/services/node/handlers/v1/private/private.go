// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/foldchain/blockchain/business/web/errs"
	"github.com/foldchain/blockchain/foundation/blockchain/consensus"
	"github.com/foldchain/blockchain/foundation/blockchain/database"
	"github.com/foldchain/blockchain/foundation/blockchain/state"
	"github.com/foldchain/blockchain/foundation/nameservice"
	"github.com/foldchain/blockchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	headBlock, err := h.State.RetrieveCanonicalHead()
	if err != nil {
		return err
	}

	status := struct {
		HeadID     string                `json:"head_id"`
		HeadSlot   uint64                `json:"head_slot"`
		Window     consensus.Window      `json:"window"`
		Chains     []consensus.ChainInfo `json:"chains"`
		PoolLength int                   `json:"pool_length"`
	}{
		HeadID:     headBlock.Hash(),
		HeadSlot:   headBlock.Header.Slot,
		Window:     h.State.RetrieveWindow(),
		Chains:     h.State.RetrieveChains(),
		PoolLength: h.State.QueryPoolLength(),
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// BlocksBySlot returns blocks in their wire format based on the specified
// to/from slot values.
func (h Handlers) BlocksBySlot(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	fromStr := web.Param(r, "from")
	if fromStr == "latest" || fromStr == "" {
		fromStr = fmt.Sprintf("%d", state.QueryLatest)
	}

	toStr := web.Param(r, "to")
	if toStr == "latest" || toStr == "" {
		toStr = fmt.Sprintf("%d", state.QueryLatest)
	}

	from, err := strconv.ParseUint(fromStr, 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	to, err := strconv.ParseUint(toStr, 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	blockData := h.State.QueryBlocksBySlot(from, to)
	if len(blockData) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, blockData, http.StatusOK)
}

// ProposeBlock takes a block received from a peer, runs it through
// consensus and if it joins a chain, persists it.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	// Decode the JSON in the post call into a wire format block.
	var blockData database.BlockData
	if err := web.Decode(r, &blockData); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	// Convert the wire format into a block. This action rebuilds the
	// merkle tree for the record set.
	block, err := database.ToBlock(blockData)
	if err != nil {
		return fmt.Errorf("unable to decode block: %w", err)
	}

	decision, err := h.State.SubmitBlock(block)
	if err != nil {
		switch {
		case errors.Is(err, consensus.ErrUnknownParent),
			errors.Is(err, consensus.ErrSlotOrderViolation),
			errors.Is(err, consensus.ErrFutureSlot):
			return errs.NewTrusted(err, http.StatusNotAcceptable)
		}
		return err
	}

	return web.Respond(ctx, w, decision, http.StatusOK)
}

// ProduceBlock produces the next block out of the pooled records and
// submits it to consensus.
func (h Handlers) ProduceBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.ProduceNextBlock(ctx)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoProducerKey), errors.Is(err, state.ErrNoOpenSlot):
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return err
	}

	resp := struct {
		Status  string `json:"status"`
		Hash    string `json:"hash"`
		Slot    uint64 `json:"slot"`
		Records int    `json:"records"`
	}{
		Status:  "produced",
		Hash:    block.Hash(),
		Slot:    block.Header.Slot,
		Records: len(block.RecordValues()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitRecord adds new node records to the pool.
func (h Handlers) SubmitRecord(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Decode the JSON in the post call into a signed record.
	var signedRec database.SignedRecord
	if err := web.Decode(r, &signedRec); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

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

// AdvanceSlot moves the chain one slot forward outside the slot clock.
// Test rigs drive finality with this.
func (h Handlers) AdvanceSlot(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	report := h.State.AdvanceSlot()
	return web.Respond(ctx, w, report, http.StatusOK)
}

// PruneOrphaned drops orphaned blocks from the consensus tree.
func (h Handlers) PruneOrphaned(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pruned := h.State.PruneOrphaned()

	resp := struct {
		Pruned []string `json:"pruned"`
	}{
		Pruned: pruned,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Truncate drops every stored block and pooled record and resets the
// consensus tree back to genesis. Test rigs use this to rewind a node.
func (h Handlers) Truncate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.Truncate(); err != nil {
		return err
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "chain truncated",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

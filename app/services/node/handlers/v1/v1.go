// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/foldchain/blockchain/app/services/node/handlers/v1/private"
	"github.com/foldchain/blockchain/app/services/node/handlers/v1/public"
	"github.com/foldchain/blockchain/foundation/blockchain/state"
	"github.com/foldchain/blockchain/foundation/events"
	"github.com/foldchain/blockchain/foundation/nameservice"
	"github.com/foldchain/blockchain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)

	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/chain/head", pbl.Head)
	app.Handle(http.MethodGet, version, "/chain/list", pbl.Chains)

	app.Handle(http.MethodGet, version, "/blocks/list/:from/:to", pbl.BlocksBySlot)
	app.Handle(http.MethodGet, version, "/blocks/account/:account", pbl.BlocksByAccount)
	app.Handle(http.MethodGet, version, "/block/status/:id", pbl.BlockStatus)

	app.Handle(http.MethodGet, version, "/proof/list/:from/:to", pbl.AccumulatorProof)
	app.Handle(http.MethodGet, version, "/proof/block/:id", pbl.MembershipWitness)
	app.Handle(http.MethodPost, version, "/proof/verify", pbl.VerifyProof)

	app.Handle(http.MethodGet, version, "/records/pool/list", pbl.Pool)
	app.Handle(http.MethodPost, version, "/records/submit", pbl.SubmitRecord)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/block/list/:from/:to", prv.BlocksBySlot)
	app.Handle(http.MethodPost, version, "/node/block/propose", prv.ProposeBlock)
	app.Handle(http.MethodPost, version, "/node/block/produce", prv.ProduceBlock)
	app.Handle(http.MethodPost, version, "/node/record/submit", prv.SubmitRecord)
	app.Handle(http.MethodPost, version, "/node/slot/advance", prv.AdvanceSlot)
	app.Handle(http.MethodPost, version, "/node/orphans/prune", prv.PruneOrphaned)
	app.Handle(http.MethodPost, version, "/node/chain/truncate", prv.Truncate)
}

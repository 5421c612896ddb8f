package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/api/handlers/common"
	"github.com/portara/walletcore/internal/api/handlers/transactions"
	"github.com/portara/walletcore/internal/api/handlers/wallet"
)

// AttachAllRoutes attaches all registered routes to s.
func AttachAllRoutes(s *api.Server) {
	// attach our routes
	s.Router.Routes = []*echo.Route{
		common.GetHealthyRoute(s),
		common.GetReadyRoute(s),
		common.GetVersionRoute(s),

		wallet.PostConnectRoute(s),
		wallet.PostDisconnectRoute(s),
		wallet.GetConnectionRoute(s),
		wallet.PostSignMessageRoute(s),
		wallet.GetMultiSigPendingRoute(s),
		wallet.GetMultiSigStatusRoute(s),
		wallet.PutMultiSigPolicyRoute(s),
		wallet.GetMultiSigPolicyRoute(s),
		wallet.DeleteMultiSigPolicyRoute(s),
		wallet.PostMultiSigApproverRoute(s),
		wallet.DeleteMultiSigApproverRoute(s),
		wallet.PutMultiSigThresholdRoute(s),

		transactions.PostPrepareTransactionRoute(s),
		transactions.PostSignTransactionRoute(s),
		transactions.PostSignBatchRoute(s),
		transactions.PostBroadcastTransactionRoute(s),
		transactions.PostCancelTransactionRoute(s),
		transactions.GetTransactionRoute(s),
	}
}

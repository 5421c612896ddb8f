package transactions

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/types"
	"github.com/portara/walletcore/internal/util"
)

func PostBroadcastTransactionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Txn.POST("/broadcast", postBroadcastTransactionHandler(s))
}

func postBroadcastTransactionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostBroadcastTransactionPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		ledgerID, err := s.Wallet.BroadcastTransaction(ctx, swag.StringValue(body.TransactionID), body.Signed)
		if err != nil {
			log.Debug().Err(err).Str("transaction_id", swag.StringValue(body.TransactionID)).Msg("Broadcast failed")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.BroadcastTransactionResponse{
			LedgerID: swag.String(ledgerID),
		})
	}
}

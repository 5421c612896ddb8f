package transactions

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/types"
	"github.com/portara/walletcore/internal/util"
)

func PostCancelTransactionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Txn.POST("/cancel", postCancelTransactionHandler(s))
}

func postCancelTransactionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostCancelTransactionPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		if err := s.Wallet.CancelTransaction(ctx, swag.StringValue(body.TransactionID)); err != nil {
			log.Debug().Err(err).Str("transaction_id", swag.StringValue(body.TransactionID)).Msg("Cancel failed")
			return err
		}

		return c.NoContent(http.StatusNoContent)
	}
}

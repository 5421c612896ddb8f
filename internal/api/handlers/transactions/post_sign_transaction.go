package transactions

import (
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/types"
	"github.com/portara/walletcore/internal/util"
)

func PostSignTransactionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Txn.POST("/sign", postSignTransactionHandler(s))
}

func postSignTransactionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSignTransactionPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		result, err := s.Wallet.SignTransaction(ctx, swag.StringValue(body.TransactionID))
		if err != nil {
			log.Debug().Err(err).Str("transaction_id", swag.StringValue(body.TransactionID)).Msg("Transaction signing failed")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.SignTransactionResponse{
			Status:    swag.String(result.Status),
			Collected: int64(result.Collected),
			Required:  int64(result.Required),
			Signed:    strfmt.Base64(result.Signed),
			Hash:      result.Hash,
		})
	}
}

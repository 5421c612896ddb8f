package wallet

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/types"
	"github.com/portara/walletcore/internal/util"
)

func PutMultiSigThresholdRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.PUT("/multisig/policy/threshold", putMultiSigThresholdHandler(s))
}

func putMultiSigThresholdHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := util.LogFromContext(c.Request().Context())

		var body types.PutMultiSigThresholdPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		if err := s.Wallet.SetMultiSigThreshold(swag.StringValue(body.Actor), int(swag.Int64Value(body.Threshold))); err != nil {
			log.Debug().Err(err).Msg("Threshold change rejected")
			return err
		}

		policy, _ := s.Wallet.GetMultiSigPolicy()

		return util.ValidateAndReturn(c, http.StatusOK, policyResponse(policy))
	}
}

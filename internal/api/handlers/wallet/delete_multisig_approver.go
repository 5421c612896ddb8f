package wallet

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/types"
	"github.com/portara/walletcore/internal/util"
)

func DeleteMultiSigApproverRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.DELETE("/multisig/policy/approvers", deleteMultiSigApproverHandler(s))
}

func deleteMultiSigApproverHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := util.LogFromContext(c.Request().Context())

		var body types.MultiSigApproverPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		if err := s.Wallet.RemoveMultiSigApprover(swag.StringValue(body.Actor), swag.StringValue(body.Approver)); err != nil {
			log.Debug().Err(err).Msg("Approver removal rejected")
			return err
		}

		policy, _ := s.Wallet.GetMultiSigPolicy()

		return util.ValidateAndReturn(c, http.StatusOK, policyResponse(policy))
	}
}

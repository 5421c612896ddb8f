package wallet

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/types"
	"github.com/portara/walletcore/internal/util"
	"github.com/portara/walletcore/internal/wallet/multisig"
)

func PutMultiSigPolicyRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.PUT("/multisig/policy", putMultiSigPolicyHandler(s))
}

// putMultiSigPolicyHandler configures the signing policy. A previous policy
// is replaced wholesale, the roster starts with just the owner.
func putMultiSigPolicyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := util.LogFromContext(c.Request().Context())

		var body types.PutMultiSigPolicyPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		if err := s.Wallet.ConfigureMultiSigPolicy(swag.StringValue(body.Owner), int(swag.Int64Value(body.Threshold))); err != nil {
			log.Debug().Err(err).Msg("Policy configuration rejected")
			return err
		}

		policy, _ := s.Wallet.GetMultiSigPolicy()

		return util.ValidateAndReturn(c, http.StatusOK, policyResponse(policy))
	}
}

func policyResponse(policy *multisig.Policy) *types.MultiSigPolicyResponse {
	return &types.MultiSigPolicyResponse{
		Threshold: swag.Int64(int64(policy.Threshold)),
		SignerSet: policy.SignerSet,
	}
}

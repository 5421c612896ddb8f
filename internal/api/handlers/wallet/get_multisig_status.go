package wallet

import (
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/api/httperrors"
	"github.com/portara/walletcore/internal/types"
	"github.com/portara/walletcore/internal/util"
)

func GetMultiSigStatusRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.GET("/multisig/:fingerprint", getMultiSigStatusHandler(s))
}

func getMultiSigStatusHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, ok := s.Wallet.GetMultiSigStatus(c.Param("fingerprint"))
		if !ok {
			return httperrors.ErrNotFoundMultiSig
		}

		expiresAt := strfmt.DateTime(status.ExpiresAt)

		return util.ValidateAndReturn(c, http.StatusOK, &types.MultiSigStatusResponse{
			Fingerprint: swag.String(status.Fingerprint),
			Collected:   int64(status.Collected),
			Required:    int64(status.Required),
			State:       swag.String(status.State),
			ExpiresAt:   &expiresAt,
		})
	}
}

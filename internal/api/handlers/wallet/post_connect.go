package wallet

import (
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/types"
	"github.com/portara/walletcore/internal/util"
	"github.com/portara/walletcore/internal/wallet/connection"
)

func PostConnectRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.POST("/connect", postConnectHandler(s))
}

func postConnectHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostConnectPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		session, err := s.Wallet.Connect(ctx, swag.StringValue(body.ProviderID))
		if err != nil {
			log.Debug().Err(err).Str("provider_id", swag.StringValue(body.ProviderID)).Msg("Connect failed")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, connectionResponse(s.Wallet.GetConnectionState(), session))
	}
}

// connectionResponse maps the state machine view onto the API shape. The
// session detail fields are only populated while connected.
func connectionResponse(state connection.State, session *connection.Session) *types.ConnectionResponse {
	res := &types.ConnectionResponse{
		State: swag.String(string(state)),
	}

	if session == nil {
		return res
	}

	res.ProviderID = session.ProviderID
	res.Address = session.Address
	res.PublicKey = session.PublicKey
	res.ChainID = session.ChainID
	res.LastError = session.LastError.String

	if !session.ConnectedAt.IsZero() {
		connectedAt := strfmt.DateTime(session.ConnectedAt)
		res.ConnectedAt = &connectedAt
	}
	if !session.ExpiresAt.IsZero() {
		expiresAt := strfmt.DateTime(session.ExpiresAt)
		res.ExpiresAt = &expiresAt
	}

	return res
}

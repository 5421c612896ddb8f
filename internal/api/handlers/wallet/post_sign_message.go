package wallet

import (
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/types"
	"github.com/portara/walletcore/internal/util"
)

func PostSignMessageRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Wallet.POST("/sign-message", postSignMessageHandler(s))
}

func postSignMessageHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSignMessagePayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		signature, err := s.Wallet.SignMessage(ctx, []byte(swag.StringValue(body.Message)))
		if err != nil {
			log.Debug().Err(err).Msg("Message signing failed")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.SignMessageResponse{
			Signature: strfmt.Base64(signature),
		})
	}
}

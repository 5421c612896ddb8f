package transactions

import (
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/types"
	"github.com/portara/walletcore/internal/util"
	"github.com/portara/walletcore/internal/wallet/pipeline"
)

func PostPrepareTransactionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Txn.POST("", postPrepareTransactionHandler(s))
}

func postPrepareTransactionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.TransactionIntentPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		record, err := s.Wallet.PrepareTransaction(ctx, intentFromPayload(&body))
		if err != nil {
			log.Debug().Err(err).Msg("Transaction intent rejected")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusCreated, recordResponse(record))
	}
}

func intentFromPayload(p *types.TransactionIntentPayload) pipeline.Intent {
	intent := pipeline.Intent{
		ChainID:              swag.Int64Value(p.ChainID),
		To:                   swag.StringValue(p.To),
		Amount:               swag.StringValue(p.Amount),
		MaxFeePerGas:         p.MaxFeePerGas,
		MaxPriorityFeePerGas: p.MaxPriorityFeePerGas,
		Data:                 p.Data,
	}
	if p.GasLimit > 0 {
		intent.GasLimit = uint64(p.GasLimit)
	}
	if nonce := swag.Int64Value(p.Nonce); nonce >= 0 {
		intent.Nonce = uint64(nonce)
	}
	return intent
}

func recordResponse(record *pipeline.TransactionRecord) *types.TransactionRecordResponse {
	createdAt := strfmt.DateTime(record.CreatedAt)

	return &types.TransactionRecordResponse{
		ID:          swag.String(record.ID),
		Fingerprint: swag.String(record.Fingerprint),
		Status:      swag.String(string(record.Status)),
		RetryCount:  int64(record.RetryCount),
		CreatedAt:   &createdAt,
		LastError:   record.LastError.String,
		LedgerID:    record.LedgerID.String,
	}
}

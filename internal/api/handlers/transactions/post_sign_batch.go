package transactions

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/types"
	"github.com/portara/walletcore/internal/util"
	"github.com/portara/walletcore/internal/wallet/pipeline"
)

func PostSignBatchRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Txn.POST("/sign-batch", postSignBatchHandler(s))
}

// postSignBatchHandler signs a batch of intents. Partial success is reported,
// not rolled back, so the response carries per-item records alongside the
// aggregate counters.
func postSignBatchHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSignTransactionBatchPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		intents := make([]pipeline.Intent, 0, len(body.Intents))
		for _, p := range body.Intents {
			intents = append(intents, intentFromPayload(p))
		}

		result, err := s.Wallet.SignTransactionBatch(ctx, intents, func(progress pipeline.BatchProgress) {
			log.Debug().
				Int("progress", progress.Progress).
				Int("total_signed", progress.TotalSigned).
				Int("total_failed", progress.TotalFailed).
				Msg(progress.Message)
		})
		if err != nil {
			log.Debug().Err(err).Int("batch_size", len(intents)).Msg("Batch signing rejected")
			return err
		}

		records := make([]*types.TransactionRecordResponse, 0, len(result.Records))
		for _, record := range result.Records {
			records = append(records, recordResponse(record))
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.SignTransactionBatchResponse{
			Records:     records,
			TotalSigned: int64(result.TotalSigned),
			TotalFailed: int64(result.TotalFailed),
		})
	}
}

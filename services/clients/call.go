package clients

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"github.com/paylane/gateway/services/remote"
)

const (
	// slowCallThreshold flags calls on the ordinary paths.
	slowCallThreshold = 100 * time.Millisecond
	// slowRequisitesThreshold is tighter: requisites selection sits on the
	// payment creation hot path.
	slowRequisitesThreshold = 50 * time.Millisecond
)

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func newProcedure[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](httpClient, baseURL+procedure, connect.WithCodec(jsonCodec{}))
}

// call runs a unary RPC through the retry primitive and maps whatever comes
// back into the closed error set. thresh below zero disables the slow-call
// warning.
func call[Req, Res any](
	ctx context.Context,
	logger *zap.Logger,
	policy remote.Policy,
	client *connect.Client[Req, Res],
	procedure string,
	req *Req,
	thresh time.Duration,
) (*Res, error) {
	started := time.Now()
	res, err := remote.Do(ctx, logger, policy, remote.RetryableCode, func(attemptCtx context.Context) (*connect.Response[Res], error) {
		return client.CallUnary(attemptCtx, connect.NewRequest(req))
	})
	if elapsed := time.Since(started); thresh >= 0 && elapsed > thresh {
		logger.Warn("slow downstream call",
			zap.String("procedure", procedure),
			zap.Duration("elapsed", elapsed))
	}
	if err != nil {
		return nil, remote.MapRPCError(logger, err)
	}
	return res.Msg, nil
}

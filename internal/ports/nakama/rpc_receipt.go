package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"numclash/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// ResultReceiptRequest asks for a signed receipt of the caller's result
// in a finished match.
type ResultReceiptRequest struct {
	MatchID string `json:"match_id"`
}

type ResultReceiptResponse struct {
	Receipt string `json:"receipt"`
	Won     bool   `json:"won"`
	Net     int64  `json:"net"`
}

// rpcResultReceipt signs the stored match result for the calling user.
// The receipt secret comes from the runtime environment so it never
// ships to clients.
func rpcResultReceipt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("Authentication required", 16) // UNAUTHENTICATED
	}

	var req ResultReceiptRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.MatchID == "" {
		return "", runtime.NewError("match_id is required", 3) // INVALID_ARGUMENT
	}

	reads := []*runtime.StorageRead{{
		Collection: matchResultsCollection,
		Key:        req.MatchID,
		UserID:     userID,
	}}
	objects, err := nk.StorageRead(ctx, reads)
	if err != nil {
		logger.Error("rpcResultReceipt: StorageRead failed: %v", err)
		return "", runtime.NewError("Internal error", 13) // INTERNAL
	}
	if len(objects) == 0 {
		return "", runtime.NewError("No result recorded for this match", 5) // NOT_FOUND
	}

	var record MatchResultRecord
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &record); err != nil {
		logger.Error("rpcResultReceipt: Corrupt result record for %s/%s: %v", userID, req.MatchID, err)
		return "", runtime.NewError("Internal error", 13)
	}

	env := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env["numclash_receipt_secret"]
	issuer := env["numclash_receipt_issuer"]
	if issuer == "" {
		issuer = "numclash"
	}
	if secret == "" {
		return "", runtime.NewError("Receipts are not configured", 13)
	}

	receipts := app.NewReceiptService(secret, issuer)
	token, err := receipts.GenerateReceipt(userID, record.MatchID, record.Won, record.Net)
	if err != nil {
		logger.Error("rpcResultReceipt: Failed to sign receipt: %v", err)
		return "", runtime.NewError("Internal error", 13)
	}

	resp := ResultReceiptResponse{Receipt: token, Won: record.Won, Net: record.Net}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

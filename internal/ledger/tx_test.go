package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitSignsAndAdvancesNonce(t *testing.T) {
	key := secp256k1.GenPrivKey()
	var envelopes []txEnvelope

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/tx", r.URL.Path)
		var env txEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		envelopes = append(envelopes, env)

		if len(envelopes) == 2 {
			// finalized-with-error: the op was rejected by game rules
			json.NewEncoder(w).Encode(Receipt{Error: "challenge already accepted by another captain"})
			return
		}
		json.NewEncoder(w).Encode(Receipt{TxHash: "0xabc", ChallengeID: 42})
	}))
	defer srv.Close()

	tx := NewTxClient(srv.URL, "sea1self", key)
	ctx := context.Background()

	receipt, err := tx.CreateChallenge(ctx, GoldToAmount(1))
	require.NoError(t, err)
	assert.Equal(t, "0xabc", receipt.TxHash)
	assert.Equal(t, uint64(42), receipt.ChallengeID)

	_, err = tx.AcceptChallenge(ctx, 42)
	require.Error(t, err)
	assert.True(t, IsRaceLoss(err))

	_, err = tx.Checkin(ctx)
	require.NoError(t, err)

	require.Len(t, envelopes, 3)
	assert.Equal(t, []string{OpCreateChallenge, OpAcceptChallenge, OpCheckin},
		[]string{envelopes[0].Op, envelopes[1].Op, envelopes[2].Op})

	// Nonce advances only on accepted submissions; the rejected one is
	// re-used by the next write.
	assert.Equal(t, uint64(0), envelopes[0].Nonce)
	assert.Equal(t, uint64(1), envelopes[1].Nonce)
	assert.Equal(t, uint64(1), envelopes[2].Nonce)

	for _, env := range envelopes {
		assert.Equal(t, "sea1self", env.From)
		digest := sha256.Sum256([]byte(env.From + ":" + env.Op + ":" + string(env.Params)))
		sig, err := hex.DecodeString(env.Sig)
		require.NoError(t, err)
		assert.True(t, key.PubKey().VerifySignature(digest[:], sig), "op %s", env.Op)
	}
}

func TestSubmitGatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tx := NewTxClient(srv.URL, "sea1self", secp256k1.GenPrivKey())
	_, err := tx.Taunt(context.Background(), "sea1rival", "cowards row faster")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

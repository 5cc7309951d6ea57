package ledger

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
)

// Write operation names accepted by the gateway.
const (
	OpCreateShip      = "create_ship"
	OpRepair          = "repair"
	OpClaimGPM        = "claim_gpm"
	OpHireCrew        = "hire_crew"
	OpBuyUpgrade      = "buy_upgrade"
	OpCheckin         = "checkin"
	OpCreateChallenge = "create_challenge"
	OpAcceptChallenge = "accept_challenge"
	OpSettleChallenge = "settle_challenge"
	OpCancelChallenge = "cancel_challenge"
	OpJoinTournament  = "join_tournament"
	OpPlaceBet        = "place_bet"
	OpClaimBet        = "claim_bet"
	OpApprove         = "approve"
	OpTopUp           = "top_up"
	OpTaunt           = "taunt"
	OpRegister        = "register"
)

// TxClient submits signed state-mutating operations for one captain. The
// gateway requires credential-scoped sequential submission, so a mutex
// serializes writes and the nonce is advanced only on acceptance.
type TxClient struct {
	BaseURL string
	HTTP    *http.Client
	Captain string

	key *secp256k1.PrivKey

	mu    sync.Mutex
	nonce uint64
}

func NewTxClient(baseURL, captain string, key *secp256k1.PrivKey) *TxClient {
	return &TxClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 15 * time.Second,
		},
		Captain: captain,
		key:     key,
	}
}

type txEnvelope struct {
	From   string          `json:"from"`
	Nonce  uint64          `json:"nonce"`
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params"`
	Sig    string          `json:"sig"`
}

// Receipt is the gateway's finalized-operation response. ChallengeID is
// populated only for create_challenge.
type Receipt struct {
	TxHash      string `json:"tx_hash"`
	ChallengeID uint64 `json:"challenge_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Submit signs and posts one operation, blocking until the gateway reports
// it finalized. Params must marshal to a JSON object.
func (c *TxClient) Submit(ctx context.Context, op string, params any) (Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := json.Marshal(params)
	if err != nil {
		return Receipt{}, err
	}
	env := txEnvelope{
		From:   c.Captain,
		Nonce:  c.nonce,
		Op:     op,
		Params: raw,
	}
	digest := sha256.Sum256([]byte(env.From + ":" + env.Op + ":" + string(raw)))
	sig, err := c.key.Sign(digest[:])
	if err != nil {
		return Receipt{}, err
	}
	env.Sig = hex.EncodeToString(sig)

	body, err := json.Marshal(env)
	if err != nil {
		return Receipt{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/tx", bytes.NewReader(body))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Receipt{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return Receipt{}, err
	}
	if resp.StatusCode >= 300 {
		return Receipt{}, &apiError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	var receipt Receipt
	if err := json.Unmarshal(respBody, &receipt); err != nil {
		return Receipt{}, err
	}
	if strings.TrimSpace(receipt.Error) != "" {
		return Receipt{}, &apiError{Status: resp.StatusCode, Message: receipt.Error}
	}
	c.nonce++
	return receipt, nil
}

type emptyParams struct{}

func (c *TxClient) CreateShip(ctx context.Context) (Receipt, error) {
	return c.Submit(ctx, OpCreateShip, emptyParams{})
}

func (c *TxClient) Repair(ctx context.Context) (Receipt, error) {
	return c.Submit(ctx, OpRepair, emptyParams{})
}

func (c *TxClient) ClaimGPM(ctx context.Context) (Receipt, error) {
	return c.Submit(ctx, OpClaimGPM, emptyParams{})
}

func (c *TxClient) HireCrew(ctx context.Context) (Receipt, error) {
	return c.Submit(ctx, OpHireCrew, emptyParams{})
}

func (c *TxClient) BuyUpgrade(ctx context.Context) (Receipt, error) {
	return c.Submit(ctx, OpBuyUpgrade, emptyParams{})
}

func (c *TxClient) Checkin(ctx context.Context) (Receipt, error) {
	return c.Submit(ctx, OpCheckin, emptyParams{})
}

func (c *TxClient) CreateChallenge(ctx context.Context, wager *Amount) (Receipt, error) {
	return c.Submit(ctx, OpCreateChallenge, struct {
		Wager *Amount `json:"wager"`
	}{wager})
}

func (c *TxClient) AcceptChallenge(ctx context.Context, id uint64) (Receipt, error) {
	return c.Submit(ctx, OpAcceptChallenge, struct {
		ID uint64 `json:"id"`
	}{id})
}

func (c *TxClient) SettleChallenge(ctx context.Context, id uint64) (Receipt, error) {
	return c.Submit(ctx, OpSettleChallenge, struct {
		ID uint64 `json:"id"`
	}{id})
}

func (c *TxClient) CancelChallenge(ctx context.Context, id uint64) (Receipt, error) {
	return c.Submit(ctx, OpCancelChallenge, struct {
		ID uint64 `json:"id"`
	}{id})
}

func (c *TxClient) JoinTournament(ctx context.Context, id uint64) (Receipt, error) {
	return c.Submit(ctx, OpJoinTournament, struct {
		ID uint64 `json:"id"`
	}{id})
}

func (c *TxClient) PlaceBet(ctx context.Context, predictionID uint64, side string, amount *Amount) (Receipt, error) {
	return c.Submit(ctx, OpPlaceBet, struct {
		PredictionID uint64  `json:"prediction_id"`
		Side         string  `json:"side"`
		Amount       *Amount `json:"amount"`
	}{predictionID, side, amount})
}

func (c *TxClient) ClaimBet(ctx context.Context, predictionID uint64) (Receipt, error) {
	return c.Submit(ctx, OpClaimBet, struct {
		PredictionID uint64 `json:"prediction_id"`
	}{predictionID})
}

func (c *TxClient) Approve(ctx context.Context, spender string, amount *Amount) (Receipt, error) {
	return c.Submit(ctx, OpApprove, struct {
		Spender string  `json:"spender"`
		Amount  *Amount `json:"amount"`
	}{spender, amount})
}

func (c *TxClient) TopUp(ctx context.Context, amount *Amount) (Receipt, error) {
	return c.Submit(ctx, OpTopUp, struct {
		Amount *Amount `json:"amount"`
	}{amount})
}

func (c *TxClient) Taunt(ctx context.Context, target, message string) (Receipt, error) {
	return c.Submit(ctx, OpTaunt, struct {
		Target  string `json:"target,omitempty"`
		Message string `json:"message"`
	}{target, message})
}

func (c *TxClient) Register(ctx context.Context, archetype string, initialBankroll *Amount, alias string) (Receipt, error) {
	return c.Submit(ctx, OpRegister, struct {
		Archetype       string  `json:"archetype"`
		InitialBankroll *Amount `json:"initial_bankroll"`
		Alias           string  `json:"alias"`
	}{archetype, initialBankroll, alias})
}

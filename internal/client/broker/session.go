// Package broker speaks the local trading gateway's JSON protocol over a
// single long-lived websocket. The gateway enforces a concurrent-connection
// quota, so one Session is dialed at startup, shared for the process
// lifetime, and must be closed on shutdown.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"copytrade/internal/config"
)

type Session struct {
	mu      sync.Mutex
	url     string
	conn    *websocket.Conn
	timeout time.Duration

	env       string
	market    string
	accountID uint64
	unlockPwd string
}

type request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type response struct {
	ID      string          `json:"id"`
	Ret     int             `json:"ret"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Dial opens the gateway connection and resolves the account id for the
// configured environment and market.
func Dial(ctx context.Context, cfg config.BrokerConfig, env, market string) (*Session, error) {
	accountID, err := ResolveAccount(cfg.Accounts, env, market)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("ws://%s:%d/trade", cfg.Host, cfg.Port)
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway dial %s: %w", url, err)
	}
	conn.SetReadLimit(2 << 20)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Session{
		url:       url,
		conn:      conn,
		timeout:   timeout,
		env:       env,
		market:    market,
		accountID: accountID,
		unlockPwd: cfg.UnlockPassword,
	}, nil
}

func (s *Session) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close(websocket.StatusNormalClosure, "shutdown")
}

func (s *Session) AccountID() uint64 {
	if s == nil {
		return 0
	}
	return s.accountID
}

func (s *Session) Market() string {
	if s == nil {
		return ""
	}
	return s.market
}

func (s *Session) Environment() string {
	if s == nil {
		return ""
	}
	return s.env
}

// call performs one request/response exchange. The session is shared by the
// trade loop, the snapshot cron job, and the HTTP handlers, and the websocket
// allows only one reader at a time, so the whole exchange holds the session
// lock: at most one request is in flight and responses match by id without a
// pending map.
func (s *Session) call(ctx context.Context, method string, params any, out any) error {
	if s == nil || s.conn == nil {
		return fmt.Errorf("gateway not connected")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	payload, err := json.Marshal(request{ID: id, Method: method, Params: params})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("gateway write %s: %w", method, err)
	}
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("gateway read %s: %w", method, err)
		}
		var resp response
		if err := json.Unmarshal(data, &resp); err != nil {
			return fmt.Errorf("gateway decode %s: %w", method, err)
		}
		// The gateway may interleave unsolicited push frames; skip them.
		if resp.ID != id {
			continue
		}
		if resp.Ret != RetOK && method != "place_order" {
			return fmt.Errorf("gateway %s failed (ret=%d): %s", method, resp.Ret, resp.Message)
		}
		if out != nil {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("gateway decode %s: %w", method, err)
			}
		}
		return nil
	}
}

// Positions queries current holdings. Read-only; zero-quantity rows are the
// caller's concern.
func (s *Session) Positions(ctx context.Context) ([]Position, error) {
	params := map[string]any{
		"acc_id":  s.accountID,
		"trd_env": s.env,
		"market":  s.market,
	}
	var resp struct {
		Data struct {
			Positions []Position `json:"positions"`
		} `json:"data"`
	}
	if err := s.call(ctx, "positions", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Positions, nil
}

func (s *Session) AccountInfo(ctx context.Context) (AccountInfo, error) {
	params := map[string]any{
		"acc_id":   s.accountID,
		"trd_env":  s.env,
		"currency": CurrencyFor(s.market),
	}
	var resp struct {
		Data AccountInfo `json:"data"`
	}
	if err := s.call(ctx, "accinfo", params, &resp); err != nil {
		return AccountInfo{}, err
	}
	return resp.Data, nil
}

// Unlock authenticates order placement for live accounts. Simulated accounts
// never need it.
func (s *Session) Unlock(ctx context.Context) error {
	if s.unlockPwd == "" {
		return fmt.Errorf("unlock password is not configured")
	}
	return s.call(ctx, "unlock", map[string]any{"password": s.unlockPwd}, nil)
}

// PlaceMarketOrder submits one market order. A broker rejection comes back in
// OrderResult.Ret, not as an error; errors mean the exchange itself failed.
func (s *Session) PlaceMarketOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	if req.ClientOrderID == "" {
		req.ClientOrderID = uuid.NewString()
	}
	params := map[string]any{
		"acc_id":          s.accountID,
		"trd_env":         s.env,
		"order_type":      "market",
		"code":            req.Code,
		"trd_side":        req.Side,
		"qty":             req.Quantity,
		"price":           req.Price,
		"client_order_id": req.ClientOrderID,
	}
	var resp struct {
		Ret     int    `json:"ret"`
		Message string `json:"message"`
		Data    struct {
			OrderID string `json:"order_id"`
		} `json:"data"`
	}
	if err := s.call(ctx, "place_order", params, &resp); err != nil {
		return OrderResult{}, err
	}
	return OrderResult{
		Ret:     resp.Ret,
		OrderID: resp.Data.OrderID,
		Message: resp.Message,
	}, nil
}

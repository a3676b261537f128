package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/yisheng316/Crypto-Trading-System/internal/application"
	"github.com/yisheng316/Crypto-Trading-System/internal/domain"
)

// userHeader carries the caller identity; absent, the configured default
// user applies (single implicit user at the boundary only).
const userHeader = "X-User-ID"

type Server struct {
	prices  *application.PriceService
	trades  *application.TradeService
	wallets *application.WalletService

	defaultUser string
	ping        func(ctx context.Context) error
}

func NewServer(prices *application.PriceService, trades *application.TradeService, wallets *application.WalletService, defaultUser string) *Server {
	return &Server{prices: prices, trades: trades, wallets: wallets, defaultUser: defaultUser}
}

// WithPing wires a readiness probe (DB ping) into /readyz.
func (s *Server) WithPing(ping func(ctx context.Context) error) *Server {
	s.ping = ping
	return s
}

func (s *Server) userID(r *http.Request) string {
	if uid := r.Header.Get(userHeader); uid != "" {
		return uid
	}
	return s.defaultUser
}

type priceResponse struct {
	Symbol    string          `json:"symbol"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Exchange  string          `json:"exchange"`
	Timestamp time.Time       `json:"timestamp"`
}

func toPriceResponse(s domain.PriceSnapshot) priceResponse {
	return priceResponse{Symbol: s.Symbol, Bid: s.Bid, Ask: s.Ask, Exchange: s.Source, Timestamp: s.Timestamp}
}

type tradeRequest struct {
	Symbol   string          `json:"symbol"`
	Side     string          `json:"side"`
	Quantity decimal.Decimal `json:"quantity"`
}

type tradeResponse struct {
	TradeID   string          `json:"tradeId"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

func toTradeResponse(t domain.Trade) tradeResponse {
	return tradeResponse{
		TradeID: t.ID, Symbol: t.Symbol, Side: string(t.Side),
		Price: t.Price, Quantity: t.Quantity, Total: t.Total, Timestamp: t.ExecutedAt,
	}
}

type walletResponse struct {
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

func (s *Server) GetLatestPrice(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	snap, err := s.prices.GetLatestPrice(r.Context(), symbol)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPriceResponse(snap))
}

func (s *Server) GetAllLatestPrices(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.prices.GetAllLatestPrices(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]priceResponse, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, toPriceResponse(snap))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) ExecuteTrade(w http.ResponseWriter, r *http.Request) {
	var body tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid Trade Request", "invalid JSON body")
		return
	}
	trade, err := s.trades.ExecuteTrade(r.Context(), s.userID(r), application.TradeRequest{
		Symbol:   body.Symbol,
		Side:     domain.Side(body.Side),
		Quantity: body.Quantity,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTradeResponse(trade))
}

func (s *Server) GetUserTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.trades.GetUserTrades(r.Context(), s.userID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		out = append(out, toTradeResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetUserWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.wallets.GetUserWallets(r.Context(), s.userID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]walletResponse, 0, len(wallets))
	for _, wl := range wallets {
		out = append(out, walletResponse{Currency: wl.Currency, Balance: wl.Balance})
	}
	writeJSON(w, http.StatusOK, out)
}

// errorResponse is the error envelope returned on every failure path.
type errorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Details   string    `json:"details"`
	Path      string    `json:"path"`
}

// writeServiceError maps the application error taxonomy onto distinct
// responses; anything unknown is an opaque internal failure.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidTrade):
		writeError(w, r, http.StatusBadRequest, "Invalid Trade Request", err.Error())
	case errors.Is(err, application.ErrInsufficientBalance):
		writeError(w, r, http.StatusBadRequest, "Insufficient Balance", err.Error())
	case errors.Is(err, application.ErrPriceNotFound):
		writeError(w, r, http.StatusNotFound, "Price Not Found", err.Error())
	case errors.Is(err, application.ErrLedgerConflict):
		writeError(w, r, http.StatusConflict, "Trade Conflict", "concurrent balance update, retry the request")
	default:
		writeError(w, r, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Timestamp: time.Now().UTC(),
		Message:   message,
		Details:   details,
		Path:      r.URL.Path,
	})
}

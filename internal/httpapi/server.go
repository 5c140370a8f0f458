package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/finbank/ledger-service/internal/domain"
)

// UserIDHeader carries the authenticated user id, set by the upstream
// identity layer.
const UserIDHeader = "X-User-ID"

// AccountService is the slice of the account manager the API needs.
type AccountService interface {
	CreateAccount(ctx context.Context, userID int64, accountType domain.AccountType) (*domain.Account, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	ListAccountsForUser(ctx context.Context, userID int64) ([]*domain.Account, error)
}

// TransactionService is the slice of the transaction engine the API needs.
type TransactionService interface {
	PostTransaction(ctx context.Context, accountID, userID int64, amount decimal.Decimal, description string, txType domain.TransactionType) (*domain.Transaction, error)
	ListTransactionsForUser(ctx context.Context, userID int64, limit int) ([]*domain.Transaction, error)
	ListTransactionsForAccount(ctx context.Context, accountID int64, limit int) ([]*domain.Transaction, error)
}

// TransferService is the slice of the transfer coordinator the API needs.
type TransferService interface {
	Transfer(ctx context.Context, senderUserID int64, recipientUsername string, amount decimal.Decimal) (*domain.Transaction, *domain.Transaction, error)
}

// Server exposes the ledger core as a JSON API.
type Server struct {
	accounts     AccountService
	transactions TransactionService
	transfers    TransferService
}

// NewServer creates a new Server.
func NewServer(accounts AccountService, transactions TransactionService, transfers TransferService) *Server {
	return &Server{
		accounts:     accounts,
		transactions: transactions,
		transfers:    transfers,
	}
}

// Router builds the gin engine with all ledger routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api/v1")
	api.POST("/accounts", s.createAccount)
	api.GET("/accounts", s.listAccounts)
	api.GET("/accounts/:id", s.getAccount)
	api.GET("/accounts/:id/transactions", s.listAccountTransactions)
	api.POST("/transactions", s.postTransaction)
	api.GET("/transactions", s.listUserTransactions)
	api.POST("/transfers", s.transfer)

	return r
}

type createAccountRequest struct {
	AccountType string `json:"account_type" binding:"required"`
}

func (s *Server) createAccount(c *gin.Context) {
	userID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	account, err := s.accounts.CreateAccount(c.Request.Context(), userID, domain.AccountType(req.AccountType))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAccountResponse(account))
}

func (s *Server) getAccount(c *gin.Context) {
	if _, ok := authenticatedUser(c); !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	account, err := s.accounts.GetAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (s *Server) listAccounts(c *gin.Context) {
	userID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	accounts, err := s.accounts.ListAccountsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		resp = append(resp, toAccountResponse(account))
	}
	c.JSON(http.StatusOK, resp)
}

type postTransactionRequest struct {
	AccountID   int64  `json:"account_id" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required"`
}

func (s *Server) postTransaction(c *gin.Context) {
	userID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	var req postTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	transaction, err := s.transactions.PostTransaction(
		c.Request.Context(),
		req.AccountID,
		userID,
		amount,
		req.Description,
		domain.TransactionType(req.Type),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

func (s *Server) listUserTransactions(c *gin.Context) {
	userID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	transactions, err := s.transactions.ListTransactionsForUser(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTransactionResponses(transactions))
}

func (s *Server) listAccountTransactions(c *gin.Context) {
	if _, ok := authenticatedUser(c); !ok {
		return
	}

	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	transactions, err := s.transactions.ListTransactionsForAccount(c.Request.Context(), accountID, queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTransactionResponses(transactions))
}

type transferRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
}

func (s *Server) transfer(c *gin.Context) {
	userID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	debit, credit, err := s.transfers.Transfer(c.Request.Context(), userID, req.Recipient, amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"debit":  toTransactionResponse(debit),
		"credit": toTransactionResponse(credit),
	})
}

// authenticatedUser extracts the caller's user id from the identity header.
// Responds 401 and returns false when the header is missing or malformed.
func authenticatedUser(c *gin.Context) (int64, bool) {
	raw := c.GetHeader(UserIDHeader)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserIDHeader + " header"})
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid " + UserIDHeader + " header"})
		return 0, false
	}
	return userID, true
}

// queryLimit parses the optional ?limit= parameter; 0 lets the service pick
// its default.
func queryLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

type accountResponse struct {
	ID            int64  `json:"id"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
	Currency      string `json:"currency"`
	UserID        int64  `json:"user_id"`
	CreatedAt     string `json:"created_at"`
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		AccountType:   string(a.Type),
		Balance:       a.Balance.StringFixed(2),
		Currency:      a.Currency,
		UserID:        a.UserID,
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	UserID      int64  `json:"user_id"`
	AccountID   int64  `json:"account_id"`
	ReferenceID string `json:"reference_id"`
}

func toTransactionResponse(t *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Amount:      t.Amount.StringFixed(2),
		Description: t.Description,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Timestamp:   t.Timestamp.UTC().Format(time.RFC3339),
		UserID:      t.UserID,
		AccountID:   t.AccountID,
		ReferenceID: t.ReferenceID,
	}
}

func toTransactionResponses(transactions []*domain.Transaction) []transactionResponse {
	resp := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		resp = append(resp, toTransactionResponse(t))
	}
	return resp
}

// Package indexer implements the transfer source against an Algorand
// indexer. It lists the distributor's transactions for one asset and
// flattens the asset-transfer sub-records into audit transfer events.
package indexer

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/nfdtools/dropaudit/internal/transport"
	"github.com/nfdtools/dropaudit/pkg/audit"
	"github.com/nfdtools/dropaudit/pkg/errors"
)

// DefaultBaseURL is a public mainnet indexer.
const DefaultBaseURL = "https://mainnet-idx.algonode.cloud"

const service = "indexer"

// Client fetches the distributor's transfer history. It implements
// audit.TransferSource.
type Client struct {
	transport *transport.Client
	baseURL   string
	account   string
	assetID   uint64
}

// NewClient creates an indexer client scoped to one account and asset.
// token may be empty for tokenless public indexers.
func NewClient(baseURL, token, account string, assetID uint64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		transport: transport.New(token),
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		account:   account,
		assetID:   assetID,
	}
}

// transactionsResponse is the indexer account-transactions payload.
type transactionsResponse struct {
	Transactions []transaction `json:"transactions"`
	NextToken    string        `json:"next-token"`
}

type transaction struct {
	ID             string         `json:"id"`
	Sender         string         `json:"sender"`
	ConfirmedRound uint64         `json:"confirmed-round"`
	AssetTransfer  *assetTransfer `json:"asset-transfer-transaction"`
}

type assetTransfer struct {
	AssetID  uint64 `json:"asset-id"`
	Receiver string `json:"receiver"`
	Amount   uint64 `json:"amount"`
}

// Transfers returns every positive-amount transfer of the configured asset
// sent by the account, following next-token pagination until exhausted.
// Transactions without an asset-transfer sub-record are skipped rather
// than treated as malformed.
func (c *Client) Transfers(ctx context.Context) ([]audit.TransferEvent, error) {
	var events []audit.TransferEvent

	next := ""
	for {
		payload, err := c.page(ctx, next)
		if err != nil {
			return nil, err
		}

		for _, tx := range payload.Transactions {
			if tx.AssetTransfer == nil {
				continue
			}
			events = append(events, audit.TransferEvent{
				TxID:      tx.ID,
				Sender:    tx.Sender,
				Receiver:  tx.AssetTransfer.Receiver,
				RawAmount: tx.AssetTransfer.Amount,
				Round:     tx.ConfirmedRound,
			})
		}

		if payload.NextToken == "" || len(payload.Transactions) == 0 {
			return events, nil
		}
		next = payload.NextToken
	}
}

func (c *Client) page(ctx context.Context, next string) (*transactionsResponse, error) {
	query := url.Values{}
	query.Set("asset-id", strconv.FormatUint(c.assetID, 10))
	query.Set("currency-greater-than", "0")
	if next != "" {
		query.Set("next", next)
	}

	endpoint := c.baseURL + "/v2/accounts/" + url.PathEscape(c.account) + "/transactions?" + query.Encode()
	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return nil, errors.WrapAPI(service, 0, err)
	}

	var payload transactionsResponse
	if err := transport.DecodeResponse(service, resp, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

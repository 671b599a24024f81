package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"order-batch-service/internal/domain"
	"order-batch-service/internal/ports"
)

// Per-call id limit imposed by the POS product listing endpoint.
const availabilityChunkSize = 100

// Pause between consecutive chunk lookups to respect the POS rate limit.
const interChunkDelay = 500 * time.Millisecond

// Client implements StockOracle and OrderSubmitter against the POS
// HTTP API.
//
// It coordinates:
//   - Chunked availability lookups (at most 100 ids per call)
//   - Optional short-lived availability caching
//   - External API calls with retry/backoff
//
// A failed chunk degrades only that chunk's ids to zero availability
// instead of aborting the whole lookup.
type Client struct {
	session     *http.Client
	baseURL     string
	appID       string
	businessID  string
	accessToken string
	depotID     int64
	cache       ports.AvailabilityCache
}

type Config struct {
	BaseURL     string
	AppID       string
	BusinessID  string
	AccessToken string
	DepotID     int64
	// Cache is optional; nil disables caching.
	Cache ports.AvailabilityCache
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("pos client: base URL is empty")
	}
	if cfg.AccessToken == "" {
		return nil, errors.New("pos client: access token is empty")
	}

	return &Client{
		session:     &http.Client{Timeout: 10 * time.Second},
		baseURL:     cfg.BaseURL,
		appID:       cfg.AppID,
		businessID:  cfg.BusinessID,
		accessToken: cfg.AccessToken,
		depotID:     cfg.DepotID,
		cache:       cfg.Cache,
	}, nil
}

type productListRequest struct {
	Filters struct {
		IDs []int64 `json:"ids"`
	} `json:"filters"`
	Paginator struct {
		Size int `json:"size"`
	} `json:"paginator"`
}

type productListResponse struct {
	Code int `json:"code"`
	Data []struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Inventory struct {
			Available *int64 `json:"available"`
			Remain    *int64 `json:"remain"`
		} `json:"inventory"`
	} `json:"data"`
	Messages []string `json:"messages"`
}

// CheckAvailability returns available units per product id. Ids the
// POS does not know come back as 0. The result always covers every
// requested id.
func (c *Client) CheckAvailability(ctx context.Context, productIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	remaining := productIDs
	if c.cache != nil {
		cached, err := c.cache.GetMany(ctx, productIDs)
		if err != nil {
			log.Printf("availability cache read failed: %v", err)
		} else {
			remaining = remaining[:0:0]
			for _, id := range productIDs {
				if qty, ok := cached[id]; ok {
					out[id] = qty
				} else {
					remaining = append(remaining, id)
				}
			}
		}
	}

	fetched := make(map[int64]int64, len(remaining))
	for start := 0; start < len(remaining); start += availabilityChunkSize {
		end := start + availabilityChunkSize
		if end > len(remaining) {
			end = len(remaining)
		}
		chunk := remaining[start:end]

		results, err := c.listAvailability(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Degrade this chunk to zero availability and carry on.
			log.Printf("pos availability chunk failed, degrading %d ids to zero: %v", len(chunk), err)
			for _, id := range chunk {
				out[id] = 0
			}
		} else {
			for _, id := range chunk {
				qty := results[id]
				out[id] = qty
				fetched[id] = qty
			}
		}

		if end < len(remaining) {
			timer := time.NewTimer(interChunkDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	if c.cache != nil && len(fetched) > 0 {
		if err := c.cache.PutMany(ctx, fetched); err != nil {
			log.Printf("availability cache write failed: %v", err)
		}
	}

	return out, nil
}

func (c *Client) listAvailability(ctx context.Context, ids []int64) (map[int64]int64, error) {
	var reqBody productListRequest
	reqBody.Filters.IDs = ids
	reqBody.Paginator.Size = availabilityChunkSize

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal product list request: %w", err)
	}

	url := fmt.Sprintf("%s/product/list?appId=%s&businessId=%s", c.baseURL, c.appID, c.businessID)
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, url, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("product list call: %w", err)
	}
	defer resp.Body.Close()

	var body productListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode product list response: %w", err)
	}
	if body.Code != 1 {
		return nil, fmt.Errorf("product list rejected: %v", body.Messages)
	}

	results := make(map[int64]int64, len(ids))
	for _, p := range body.Data {
		switch {
		case p.Inventory.Available != nil:
			results[p.ID] = *p.Inventory.Available
		case p.Inventory.Remain != nil:
			results[p.ID] = *p.Inventory.Remain
		default:
			results[p.ID] = 0
		}
	}
	return results, nil
}

type billRequest struct {
	DepotID  int64 `json:"depotId"`
	Customer struct {
		ID int64 `json:"id"`
	} `json:"customer"`
	Products []billProduct `json:"products"`
	Payment  struct {
		CustomerAmount int64 `json:"customerAmount"`
	} `json:"payment"`
}

type billProduct struct {
	ID       int64 `json:"id"`
	Quantity int64 `json:"quantity"`
	Price    int64 `json:"price"`
}

type billResponse struct {
	Code int `json:"code"`
	Data struct {
		BillID int64 `json:"billId"`
	} `json:"data"`
	Messages []string `json:"messages"`
}

// SubmitOrder creates a retail bill at the POS for one queued order.
func (c *Client) SubmitOrder(ctx context.Context, order domain.QueuedOrder) (string, error) {
	var reqBody billRequest
	reqBody.DepotID = c.depotID
	reqBody.Customer.ID = order.Customer.ID
	reqBody.Payment.CustomerAmount = order.TotalAmount
	for _, item := range order.Items {
		reqBody.Products = append(reqBody.Products, billProduct{
			ID:       item.ProductID,
			Quantity: item.Quantity,
			Price:    item.UnitPrice,
		})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("submit order: marshal bill: %w", err)
	}

	url := fmt.Sprintf("%s/bill/addretail?appId=%s&businessId=%s", c.baseURL, c.appID, c.businessID)
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, url, bytes.NewReader(payload))
	})
	if err != nil {
		return "", fmt.Errorf("submit order: bill call: %w", err)
	}
	defer resp.Body.Close()

	var body billResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("submit order: decode bill response: %w", err)
	}
	if body.Code != 1 {
		return "", fmt.Errorf("submit order: bill rejected: %v", body.Messages)
	}

	return strconv.FormatInt(body.Data.BillID, 10), nil
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Sternrassler/digi-client/pkg/digimon"
)

// PageQuery selects one page of GET /digimon.
type PageQuery struct {
	Page     int
	PageSize int

	// Level filters by level name when non-empty.
	Level string
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Level != "" {
		v.Set("level", q.Level)
	}
	return v
}

// Digimon fetches GET /digimon/{id}.
func (c *Client) Digimon(ctx context.Context, id int) (*digimon.Digimon, error) {
	var d digimon.Digimon
	if err := c.getJSON(ctx, fmt.Sprintf("/digimon/%d", id), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// DigimonPage fetches one page of GET /digimon.
func (c *Client) DigimonPage(ctx context.Context, q PageQuery) (*digimon.Page, error) {
	var p digimon.Page
	if err := c.getJSON(ctx, "/digimon", q.values(), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Level fetches GET /level/{id}.
func (c *Client) Level(ctx context.Context, id int) (*digimon.Level, error) {
	var l digimon.Level
	if err := c.getJSON(ctx, fmt.Sprintf("/level/%d", id), nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Type fetches GET /type/{id}.
func (c *Client) Type(ctx context.Context, id int) (*digimon.Type, error) {
	var t digimon.Type
	if err := c.getJSON(ctx, fmt.Sprintf("/type/%d", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "decode " + path,
			Err:        err,
		}
	}
	return nil
}

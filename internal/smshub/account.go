package smshub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// GetNumbersStatus returns the provider's count of available numbers for
// country and operator. The JSON is passed through untouched.
func (c *Client) GetNumbersStatus(ctx context.Context, country, operator string) (json.RawMessage, error) {
	body, err := c.get(ctx, actionGetNumbersStatus, url.Values{
		"country":  {country},
		"operator": {operator},
	})
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, malformed(actionGetNumbersStatus, string(body), errors.New("invalid json"))
	}
	return json.RawMessage(trimmed), nil
}

// GetBalance returns the account balance.
func (c *Client) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	text, err := c.getText(ctx, actionGetBalance, nil)
	if err != nil {
		return decimal.Zero, err
	}

	switch {
	case strings.Contains(text, tokenAccessBalance):
		fields := strings.Split(text, ":")
		if len(fields) < 2 {
			return decimal.Zero, malformed(actionGetBalance, text, errors.New("missing amount"))
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
		if err != nil {
			return decimal.Zero, malformed(actionGetBalance, text, err)
		}
		return amount, nil
	case text == tokenBadKey:
		return decimal.Zero, c.badKey(actionGetBalance, text)
	case text == tokenErrorSQL:
		return decimal.Zero, sqlError(actionGetBalance, text)
	case text == tokenBadAction:
		return decimal.Zero, badAction(actionGetBalance, text)
	default:
		return decimal.Zero, unrecognized(actionGetBalance, text)
	}
}

// GetPrices returns the price table for service in country. The body is
// decoded as JSON without looking for error tokens first.
func (c *Client) GetPrices(ctx context.Context, service, country string) (PriceTable, error) {
	body, err := c.get(ctx, actionGetPrices, url.Values{
		"service": {service},
		"country": {country},
	})
	if err != nil {
		return nil, err
	}

	var table PriceTable
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, malformed(actionGetPrices, string(body), err)
	}
	return table, nil
}

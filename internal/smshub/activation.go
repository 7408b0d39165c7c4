package smshub

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// GetNumber reserves a number for service in country on operator.
func (c *Client) GetNumber(ctx context.Context, country, operator, service string) (*Number, error) {
	text, err := c.getText(ctx, actionGetNumber, url.Values{
		"country":  {country},
		"operator": {operator},
		"service":  {service},
	})
	if err != nil {
		return nil, err
	}

	switch {
	case strings.Contains(text, tokenAccessNumber):
		fields := strings.Split(text, ":")
		if len(fields) < 3 || fields[1] == "" || fields[2] == "" {
			return nil, malformed(actionGetNumber, text, errors.New("expected ACCESS_NUMBER:id:number"))
		}
		return &Number{ID: fields[1], Number: fields[2]}, nil
	case text == tokenNoNumbers:
		return nil, responseError(actionGetNumber, text, ErrNoNumbers,
			fmt.Sprintf("country=%s service=%s", country, service))
	case text == tokenNoBalance:
		return nil, responseError(actionGetNumber, text, ErrNoBalance, "api_key="+c.apiKey)
	case text == tokenWrongService:
		return nil, responseError(actionGetNumber, text, ErrWrongService, "service="+service)
	case text == tokenBadKey:
		return nil, c.badKey(actionGetNumber, text)
	case text == tokenBadAction:
		return nil, badAction(actionGetNumber, text)
	case text == tokenErrorSQL:
		return nil, sqlError(actionGetNumber, text)
	default:
		return nil, unrecognized(actionGetNumber, text)
	}
}

// SetStatus changes the state of activation id. It returns true when the
// provider acknowledged the change.
func (c *Client) SetStatus(ctx context.Context, id string, status StatusRequest) (bool, error) {
	text, err := c.getText(ctx, actionSetStatus, url.Values{
		"id":     {id},
		"status": {status.String()},
	})
	if err != nil {
		return false, err
	}

	switch text {
	case tokenAccessReady, tokenAccessRetryGet, tokenAccessActivation, tokenAccessCancel:
		return true, nil
	case tokenBadAction:
		return false, badAction(actionSetStatus, text)
	case tokenBadService:
		return false, responseError(actionSetStatus, text, ErrWrongService, "id="+id)
	case tokenBadKey:
		return false, c.badKey(actionSetStatus, text)
	case tokenNoActivation:
		return false, responseError(actionSetStatus, text, ErrNoActivation, "id="+id)
	case tokenErrorSQL:
		return false, sqlError(actionSetStatus, text)
	default:
		return false, unrecognized(actionSetStatus, text)
	}
}

// GetStatus returns the status of activation id.
func (c *Client) GetStatus(ctx context.Context, id string) (Status, error) {
	report, err := c.CheckStatus(ctx, id)
	if err != nil {
		return "", err
	}
	return report.Status, nil
}

// CheckStatus is GetStatus that also returns the code the provider attaches
// to STATUS_OK once an SMS has arrived.
func (c *Client) CheckStatus(ctx context.Context, id string) (StatusReport, error) {
	text, err := c.getText(ctx, actionGetStatus, url.Values{"id": {id}})
	if err != nil {
		return StatusReport{}, err
	}

	switch text {
	case string(StatusWaitCode), string(StatusWaitResend), string(StatusCancel), string(StatusOK):
		return StatusReport{Status: Status(text)}, nil
	case tokenBadKey:
		return StatusReport{}, c.badKey(actionGetStatus, text)
	case tokenBadAction:
		return StatusReport{}, badAction(actionGetStatus, text)
	case tokenNoActivation:
		return StatusReport{}, responseError(actionGetStatus, text, ErrNoActivation, "id="+id)
	case tokenErrorSQL:
		return StatusReport{}, sqlError(actionGetStatus, text)
	}

	if code, ok := strings.CutPrefix(text, string(StatusOK)+":"); ok {
		return StatusReport{Status: StatusOK, Code: code}, nil
	}
	return StatusReport{}, unrecognized(actionGetStatus, text)
}

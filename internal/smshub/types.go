package smshub

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultEndpoint is the SMSHub handler every action is sent to.
const DefaultEndpoint = "https://smshub.org/stubs/handler_api.php"

// Actions understood by the handler.
const (
	actionGetNumbersStatus = "getNumbersStatus"
	actionGetBalance       = "getBalance"
	actionGetNumber        = "getNumber"
	actionSetStatus        = "setStatus"
	actionGetStatus        = "getStatus"
	actionGetPrices        = "getPrices"
)

// Response tokens returned by the handler as plain text.
const (
	tokenAccessBalance    = "ACCESS_BALANCE"
	tokenAccessNumber     = "ACCESS_NUMBER"
	tokenAccessReady      = "ACCESS_READY"
	tokenAccessRetryGet   = "ACCESS_RETRY_GET"
	tokenAccessActivation = "ACCESS_ACTIVATION"
	tokenAccessCancel     = "ACCESS_CANCEL"

	tokenBadKey       = "BAD_KEY"
	tokenErrorSQL     = "ERROR_SQL"
	tokenBadAction    = "BAD_ACTION"
	tokenBadService   = "BAD_SERVICE"
	tokenNoNumbers    = "NO_NUMBERS"
	tokenNoBalance    = "NO_BALANCE"
	tokenWrongService = "WRONG_SERVICE"
	tokenNoActivation = "NO_ACTIVATION"
)

// Status is the state of an activation as reported by getStatus.
type Status string

const (
	StatusWaitCode   Status = "STATUS_WAIT_CODE"
	StatusWaitResend Status = "STATUS_WAIT_RESEND"
	StatusCancel     Status = "STATUS_CANCEL"
	StatusOK         Status = "STATUS_OK"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWaitCode, StatusWaitResend, StatusCancel, StatusOK:
		return true
	}
	return false
}

// StatusReport is a status together with the code the provider attached
// to it, if any (STATUS_OK:<code>).
type StatusReport struct {
	Status Status
	Code   string
}

// StatusRequest is the value sent to setStatus.
type StatusRequest int

const (
	// RequestReady tells the provider the SMS has been sent to the number.
	RequestReady StatusRequest = 1
	// RequestResend asks for another code on the same number.
	RequestResend StatusRequest = 3
	// RequestComplete finishes the activation.
	RequestComplete StatusRequest = 6
	// RequestCancel cancels the activation.
	RequestCancel StatusRequest = 8
)

func (r StatusRequest) String() string {
	return strconv.Itoa(int(r))
}

var requestNames = map[StatusRequest]string{
	RequestReady:    "ready",
	RequestResend:   "resend",
	RequestComplete: "complete",
	RequestCancel:   "cancel",
}

// Name returns the lower case name of r ("ready", "cancel", ...), or its
// numeric value for requests without a name.
func (r StatusRequest) Name() string {
	if n, ok := requestNames[r]; ok {
		return n
	}
	return r.String()
}

// ParseStatusRequest accepts a request name or its numeric value.
func ParseStatusRequest(s string) (StatusRequest, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, n := range requestNames {
		if s == n || s == r.String() {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown status request %q", s)
}

// Number is the handle returned when a number is reserved.
type Number struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

// PriceTable maps service -> country -> price data exactly as the provider
// sent it.
type PriceTable map[string]map[string]json.RawMessage

package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/sakura-poetry/poetryctl/internal/errors"
)

// SuccessCode is the envelope code that marks a successful call.
const SuccessCode = 200

// Outcome tags the variant of a classified response.
type Outcome int

const (
	// OutcomeSuccess is an envelope with code 200; Payload is its data.
	OutcomeSuccess Outcome = iota
	// OutcomeRaw is a 2xx response without an envelope; Payload is the body.
	OutcomeRaw
	// OutcomeBusinessError is an envelope with any other code.
	OutcomeBusinessError
	// OutcomeHTTPError is a response with a non-2xx status.
	OutcomeHTTPError
	// OutcomeTransportError means no usable response was received.
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRaw:
		return "raw"
	case OutcomeBusinessError:
		return "business_error"
	case OutcomeHTTPError:
		return "http_error"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the classification of one exchange. Exactly one of Payload or
// Err is meaningful, selected by Outcome.
type Result struct {
	Outcome Outcome
	Payload json.RawMessage
	Err     error

	// Status is the HTTP status, 0 for transport failures.
	Status int
	// Notice is the text to show the user, empty for none.
	Notice string
	// Expired requests session teardown followed by login navigation.
	Expired bool
}

// envelope is the {code, message, data} wrapper used by the backend.
type envelope struct {
	Code    json.RawMessage
	Message json.RawMessage
	Error   json.RawMessage
	Data    json.RawMessage

	// hasCode is true when the object has a code key, even one set to null.
	hasCode bool
}

// Classify maps an HTTP status and body to a Result. It has no side effects.
//
// A non-2xx status always wins over any envelope in the body. A 2xx body is
// treated as an envelope whenever it is a JSON object with a code key; a null
// or non-numeric code is a generic business failure.
func Classify(status int, body []byte) Result {
	if status < 200 || status > 299 {
		return classifyStatus(status, body)
	}

	env, ok := parseEnvelope(body)
	if !ok || !env.hasCode {
		return Result{Outcome: OutcomeRaw, Status: status, Payload: rawPayload(body)}
	}

	code, numeric := envelopeCode(env.Code)
	message := stringField(env.Message)

	if numeric && code == SuccessCode {
		var data json.RawMessage
		if !isNull(env.Data) {
			data = env.Data
		}
		return Result{Outcome: OutcomeSuccess, Status: status, Payload: data}
	}

	res := Result{Outcome: OutcomeBusinessError, Status: status}
	switch {
	case numeric && code == http.StatusUnauthorized:
		res.Notice = MsgSessionExpired
		res.Expired = true
		res.Err = errors.NewSessionExpiredError(message)
	case numeric && code == http.StatusForbidden:
		res.Notice = MsgPermission
		res.Err = errors.NewPermissionError(message)
	case numeric && code == http.StatusInternalServerError:
		res.Notice = MsgServerError
		res.Err = errors.NewServerError(message)
	default:
		res.Notice = message
		if res.Notice == "" {
			res.Notice = MsgRequestFailed
		}
		res.Err = errors.NewBusinessError(code, message)
	}
	return res
}

func classifyStatus(status int, body []byte) Result {
	res := Result{Outcome: OutcomeHTTPError, Status: status}
	switch status {
	case http.StatusBadRequest:
		res.Notice = MsgBadRequest
	case http.StatusUnauthorized:
		res.Notice = MsgUnauthorized
		res.Expired = true
	case http.StatusForbidden:
		res.Notice = MsgPermission
	case http.StatusNotFound:
		res.Notice = MsgNotFound
	case http.StatusInternalServerError:
		res.Notice = MsgServerError
	default:
		res.Notice = MsgRequestFailed
	}

	message := fmt.Sprintf("request failed with status %d", status)
	if env, ok := parseEnvelope(body); ok {
		if m := stringField(env.Message); m != "" {
			message = m
		} else if m := stringField(env.Error); m != "" {
			message = m
		}
	}
	res.Err = errors.NewTransportError(status, message, nil)
	return res
}

// transportFailure classifies an exchange that produced no usable response.
func transportFailure(cause error, message string) Result {
	return Result{
		Outcome: OutcomeTransportError,
		Notice:  MsgNetwork,
		Err:     errors.NewTransportError(0, message, cause),
	}
}

func parseEnvelope(body []byte) (envelope, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return envelope{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return envelope{}, false
	}
	code, hasCode := fields["code"]
	return envelope{
		Code:    code,
		Message: fields["message"],
		Error:   fields["error"],
		Data:    fields["data"],
		hasCode: hasCode,
	}, true
}

// envelopeCode reads an integral JSON number. Anything else is reported as
// non-numeric and treated as a generic business failure.
func envelopeCode(raw json.RawMessage) (int, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func rawPayload(body []byte) json.RawMessage {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.RawMessage(body)
}

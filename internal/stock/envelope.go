package stock

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Action tags a request envelope. The set is open on the wire; dispatch
// handles unrecognized values explicitly rather than indexing blindly.
type Action string

const ActionFind Action = "find"

// Status categorizes a response envelope.
type Status string

const (
	StatusOK       Status = "ok"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// Request is the inbound command envelope on the request topic.
type Request struct {
	Action Action `msgpack:"action"`
	ItemID string `msgpack:"item_id"`
}

// ItemView is the record projection carried by an ok response.
type ItemView struct {
	Stock int64 `msgpack:"stock"`
	Price int64 `msgpack:"price"`
}

// Response is the outbound envelope on the response topic. Msg holds
// either an ItemView (status ok) or a short message string, kept raw so
// consumers decode it according to Status.
type Response struct {
	Action Action             `msgpack:"action"`
	Status Status             `msgpack:"status"`
	Msg    msgpack.RawMessage `msgpack:"msg"`
}

func newResponse(action Action, status Status, msg any) (Response, error) {
	raw, err := msgpack.Marshal(msg)
	if err != nil {
		return Response{}, fmt.Errorf("encode response payload: %w", err)
	}
	return Response{Action: action, Status: status, Msg: raw}, nil
}

// OKResponse wraps a found record.
func OKResponse(action Action, item ItemView) (Response, error) {
	return newResponse(action, StatusOK, item)
}

// NotFoundResponse reports an absent item.
func NotFoundResponse(action Action, text string) (Response, error) {
	return newResponse(action, StatusNotFound, text)
}

// Item decodes the payload of an ok response.
func (r Response) Item() (ItemView, error) {
	var v ItemView
	if err := msgpack.Unmarshal(r.Msg, &v); err != nil {
		return ItemView{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	return v, nil
}

// Text decodes the payload of a not_found or error response.
func (r Response) Text() (string, error) {
	var s string
	if err := msgpack.Unmarshal(r.Msg, &s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	return s, nil
}

func EncodeRequest(req Request) ([]byte, error) {
	b, err := msgpack.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request envelope: %w", err)
	}
	return b, nil
}

func DecodeRequest(b []byte) (Request, error) {
	var req Request
	if err := msgpack.Unmarshal(b, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	return req, nil
}

func EncodeResponse(resp Response) ([]byte, error) {
	b, err := msgpack.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response envelope: %w", err)
	}
	return b, nil
}

func DecodeResponse(b []byte) (Response, error) {
	var resp Response
	if err := msgpack.Unmarshal(b, &resp); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	return resp, nil
}

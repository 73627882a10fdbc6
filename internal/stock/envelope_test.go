package stock

import (
	"errors"
	"testing"
)

func TestRequestRoundTrip(t *testing.T) {
	want := Request{Action: ActionFind, ItemID: "a7f3"}

	b, err := EncodeRequest(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeRequest(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestDecodeRequest_UnknownActionPreserved(t *testing.T) {
	b, err := EncodeRequest(Request{Action: "restock", ItemID: "x"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	req, err := DecodeRequest(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Action != "restock" {
		t.Errorf("expected action preserved, got %q", req.Action)
	}
}

func TestDecodeRequest_Malformed(t *testing.T) {
	if _, err := DecodeRequest([]byte{0xc1}); !errors.Is(err, ErrBadRecord) {
		t.Errorf("expected ErrBadRecord, got %v", err)
	}
}

func TestOKResponse(t *testing.T) {
	resp, err := OKResponse(ActionFind, ItemView{Stock: 3, Price: 50})
	if err != nil {
		t.Fatalf("build response: %v", err)
	}

	b, err := EncodeResponse(resp)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeResponse(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Action != ActionFind || decoded.Status != StatusOK {
		t.Fatalf("unexpected envelope: %+v", decoded)
	}
	item, err := decoded.Item()
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if item != (ItemView{Stock: 3, Price: 50}) {
		t.Errorf("unexpected payload: %+v", item)
	}
}

func TestNotFoundResponse(t *testing.T) {
	resp, err := NotFoundResponse(ActionFind, "Item: missing not found!")
	if err != nil {
		t.Fatalf("build response: %v", err)
	}

	b, err := EncodeResponse(resp)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeResponse(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Status != StatusNotFound {
		t.Fatalf("expected not_found, got %q", decoded.Status)
	}
	text, err := decoded.Text()
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if text != "Item: missing not found!" {
		t.Errorf("unexpected payload: %q", text)
	}
}

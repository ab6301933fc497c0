package protocol

import (
	"encoding/json"
	"testing"
)

// ---------------------------------------------------------------------------
// Test: Parsing a valid public send_message
// ---------------------------------------------------------------------------

func TestParseClientMessage_SendPublic(t *testing.T) {
	input := []byte(`{"type":"send_message","message":"hello all","visibility":"public","room":"general"}`)

	msgType, msg, err := ParseClientMessage(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgType != TypeSendMessage {
		t.Fatalf("expected type %q, got %q", TypeSendMessage, msgType)
	}

	sm, ok := msg.(SendMessageMsg)
	if !ok {
		t.Fatalf("expected SendMessageMsg, got %T", msg)
	}
	if sm.Message != "hello all" {
		t.Errorf("expected message %q, got %q", "hello all", sm.Message)
	}
	if sm.Visibility != VisibilityPublic {
		t.Errorf("expected visibility %q, got %q", VisibilityPublic, sm.Visibility)
	}
	if sm.Room != "general" {
		t.Errorf("expected room %q, got %q", "general", sm.Room)
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing a valid private send_message
// ---------------------------------------------------------------------------

func TestParseClientMessage_SendPrivate(t *testing.T) {
	input := []byte(`{"type":"send_message","message":"psst","visibility":"private","recipient_username":"user2"}`)

	_, msg, err := ParseClientMessage(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sm, ok := msg.(SendMessageMsg)
	if !ok {
		t.Fatalf("expected SendMessageMsg, got %T", msg)
	}
	if sm.Visibility != VisibilityPrivate {
		t.Errorf("expected visibility %q, got %q", VisibilityPrivate, sm.Visibility)
	}
	if sm.RecipientUsername != "user2" {
		t.Errorf("expected recipient %q, got %q", "user2", sm.RecipientUsername)
	}
	if sm.Room != "" {
		t.Errorf("expected empty room for private message, got %q", sm.Room)
	}
}

// ---------------------------------------------------------------------------
// Test: Creating a receive_message server message
// ---------------------------------------------------------------------------

func TestNewServerMessage_ReceiveMessage(t *testing.T) {
	payload := ReceiveMessageMsg{
		Sender:    "testuser",
		Message:   "hi there",
		Timestamp: "2024-01-02 15:04:05",
		Kind:      VisibilityPrivate,
		Receiver:  "user2",
	}

	data, err := NewServerMessage(TypeReceiveMessage, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}

	if result["type"] != TypeReceiveMessage {
		t.Errorf("expected type %q, got %v", TypeReceiveMessage, result["type"])
	}
	if result["sender"] != "testuser" {
		t.Errorf("expected sender %q, got %v", "testuser", result["sender"])
	}
	if result["receiver"] != "user2" {
		t.Errorf("expected receiver %q, got %v", "user2", result["receiver"])
	}
	if result["kind"] != VisibilityPrivate {
		t.Errorf("expected kind %q, got %v", VisibilityPrivate, result["kind"])
	}
}

// ---------------------------------------------------------------------------
// Test: History message omits receiver for public entries
// ---------------------------------------------------------------------------

func TestNewServerMessage_HistoryOmitsEmptyReceiver(t *testing.T) {
	payload := HistoryMsg{
		Messages: []HistoryEntry{
			{Sender: "a", Content: "public msg", Timestamp: "2024-01-02 15:04:05", Kind: VisibilityPublic},
		},
	}

	data, err := NewServerMessage(TypeHistory, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		Messages []map[string]interface{} `json:"messages"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(result.Messages))
	}
	if _, present := result.Messages[0]["receiver"]; present {
		t.Error("public history entry should omit the receiver field")
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing an unknown message type returns an error
// ---------------------------------------------------------------------------

func TestParseClientMessage_UnknownType(t *testing.T) {
	input := []byte(`{"type":"unknown_type","data":"something"}`)

	msgType, msg, err := ParseClientMessage(input)
	if err == nil {
		t.Fatal("expected error for unknown message type")
	}
	if msgType != "unknown_type" {
		t.Errorf("expected reported type %q, got %q", "unknown_type", msgType)
	}
	if msg != nil {
		t.Errorf("expected nil message, got %v", msg)
	}
}

// ---------------------------------------------------------------------------
// Test: Malformed and typeless payloads are rejected
// ---------------------------------------------------------------------------

func TestParseClientMessage_Invalid(t *testing.T) {
	if _, _, err := ParseClientMessage([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, _, err := ParseClientMessage([]byte(`{"message":"no type"}`)); err == nil {
		t.Error("expected error for missing type field")
	}
}

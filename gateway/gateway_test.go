package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sapogames/roomkit/games"
)

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient("", "")

	if client.Configured() {
		t.Fatal("a client without URL and key must not report configured")
	}

	err := client.Call(context.Background(), "create_rps_room", nil, nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestClient_CallDecodesResponse(t *testing.T) {
	var gotPath, gotAPIKey, gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"nickname":"ana","playerId":"p1","playerSecret":"s1","roomCode":"AB12CD"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")

	var sess games.Session
	err := client.Call(context.Background(), "create_rps_room", map[string]any{"host_nickname": "ana"}, &sess)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	if gotPath != "/rest/v1/rpc/create_rps_room" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotAPIKey != "anon-key" || gotAuth != "Bearer anon-key" {
		t.Errorf("credentials not sent: apikey=%q auth=%q", gotAPIKey, gotAuth)
	}
	if sess.PlayerID != "p1" || sess.RoomCode != "AB12CD" {
		t.Errorf("response not decoded: %+v", sess)
	}
}

func TestClient_RemoteErrorPassedVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"La sala ya esta llena.","code":"P0001","hint":""}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")

	err := client.Call(context.Background(), "join_rps_room", nil, nil)
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected a RemoteError, got %v", err)
	}
	if remote.Message != "La sala ya esta llena." {
		t.Errorf("backend message must pass through verbatim, got %q", remote.Message)
	}
	if remote.Error() != remote.Message {
		t.Errorf("Error() must be the bare message, got %q", remote.Error())
	}
	if remote.Code != "P0001" || remote.Status != http.StatusBadRequest {
		t.Errorf("unexpected code/status: %+v", remote)
	}
}

func TestClient_UnparseableErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")

	err := client.Call(context.Background(), "get_rps_room_snapshot", nil, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		t.Errorf("non-JSON failures must not masquerade as remote rejections: %v", err)
	}
}

func TestClient_EmptyResponseWithExpectedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")

	var sess games.Session
	err := client.Call(context.Background(), "create_rps_room", nil, &sess)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse for a null body, got %v", err)
	}
}

func TestClient_VoidCallIgnoresBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "anon-key")

	if err := client.Call(context.Background(), "submit_rps_move", nil, nil); err != nil {
		t.Errorf("void calls must tolerate a null body, got %v", err)
	}
}

func TestParseSession(t *testing.T) {
	full := games.Session{Nickname: "ana", PlayerID: "p1", PlayerSecret: "s1", RoomCode: "AB12CD"}
	sess, err := ParseSession(full)
	if err != nil {
		t.Fatalf("ParseSession failed on a complete session: %v", err)
	}
	if *sess != full {
		t.Errorf("session mangled: %+v", sess)
	}

	for _, broken := range []games.Session{
		{PlayerID: "p1", PlayerSecret: "s1", RoomCode: "AB12CD"},
		{Nickname: "ana", PlayerSecret: "s1", RoomCode: "AB12CD"},
		{Nickname: "ana", PlayerID: "p1", RoomCode: "AB12CD"},
		{Nickname: "ana", PlayerID: "p1", PlayerSecret: "s1"},
	} {
		if _, err := ParseSession(broken); !errors.Is(err, ErrMalformedSession) {
			t.Errorf("expected ErrMalformedSession for %+v, got %v", broken, err)
		}
	}
}

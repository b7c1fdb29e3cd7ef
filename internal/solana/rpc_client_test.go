package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// rpcServer answers every request with the result built by fn.
func rpcServer(t *testing.T, fn func(req rpcRequest) map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		resp := fn(req)
		resp["jsonrpc"] = "2.0"
		resp["id"] = req.ID

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPClient_GetLatestBlockhash(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) map[string]interface{} {
		if req.Method != "getLatestBlockhash" {
			t.Errorf("expected method getLatestBlockhash, got %s", req.Method)
		}
		return map[string]interface{}{
			"result": map[string]interface{}{
				"context": map[string]interface{}{"slot": 2792},
				"value": map[string]interface{}{
					"blockhash":            "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N",
					"lastValidBlockHeight": 3090,
				},
			},
		}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	bh, err := client.GetLatestBlockhash(context.Background(), CommitmentFinalized)
	if err != nil {
		t.Fatalf("GetLatestBlockhash: %v", err)
	}

	if bh.Hash != "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N" {
		t.Errorf("unexpected blockhash: %s", bh.Hash)
	}
	if bh.LastValidBlockHeight != 3090 {
		t.Errorf("expected last valid height 3090, got %d", bh.LastValidBlockHeight)
	}
	if bh.Slot != 2792 {
		t.Errorf("expected slot 2792, got %d", bh.Slot)
	}
}

func TestHTTPClient_GetMinimumBalanceForRentExemption(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) map[string]interface{} {
		if req.Method != "getMinimumBalanceForRentExemption" {
			t.Errorf("expected method getMinimumBalanceForRentExemption, got %s", req.Method)
		}
		if len(req.Params) < 1 || req.Params[0].(float64) != 482 {
			t.Errorf("expected data length 482, got %v", req.Params)
		}
		return map[string]interface{}{"result": 4245120}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	lamports, err := client.GetMinimumBalanceForRentExemption(context.Background(), 482, CommitmentConfirmed)
	if err != nil {
		t.Fatalf("GetMinimumBalanceForRentExemption: %v", err)
	}
	if lamports != 4245120 {
		t.Errorf("expected 4245120 lamports, got %d", lamports)
	}
}

func TestHTTPClient_SendTransaction(t *testing.T) {
	wire := []byte{1, 2, 3, 4}

	server := rpcServer(t, func(req rpcRequest) map[string]interface{} {
		if req.Method != "sendTransaction" {
			t.Errorf("expected method sendTransaction, got %s", req.Method)
		}
		if len(req.Params) != 2 {
			t.Fatalf("expected 2 params, got %d", len(req.Params))
		}
		if req.Params[0] != base64.StdEncoding.EncodeToString(wire) {
			t.Errorf("unexpected payload: %v", req.Params[0])
		}
		config := req.Params[1].(map[string]interface{})
		if config["encoding"] != "base64" {
			t.Errorf("expected base64 encoding, got %v", config["encoding"])
		}
		if config["skipPreflight"] != false {
			t.Errorf("expected skipPreflight false, got %v", config["skipPreflight"])
		}
		if config["preflightCommitment"] != "confirmed" {
			t.Errorf("expected preflightCommitment confirmed, got %v", config["preflightCommitment"])
		}
		return map[string]interface{}{"result": "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	sig, err := client.SendTransaction(context.Background(), wire, SendOptions{PreflightCommitment: CommitmentConfirmed})
	if err != nil {
		t.Fatalf("SendTransaction: %v", err)
	}
	if sig != "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW" {
		t.Errorf("unexpected signature: %s", sig)
	}
}

func TestHTTPClient_SendTransaction_NotRetried(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL,
		WithMaxRetries(3),
		WithRetryDelay(time.Millisecond),
	)

	_, err := client.SendTransaction(context.Background(), []byte{1}, SendOptions{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts.Load() != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", attempts.Load())
	}
}

func TestHTTPClient_SendTransaction_PreflightFailure(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) map[string]interface{} {
		return map[string]interface{}{
			"error": map[string]interface{}{
				"code":    RPCErrSendTransactionPreflightFailure,
				"message": "Transaction simulation failed: Attempt to debit an account but found no record of a prior credit.",
				"data":    map[string]interface{}{"logs": []string{}},
			},
		}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	_, err := client.SendTransaction(context.Background(), []byte{1}, SendOptions{})

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %T (%v)", err, err)
	}
	if rpcErr.Code != RPCErrSendTransactionPreflightFailure {
		t.Errorf("expected code %d, got %d", RPCErrSendTransactionPreflightFailure, rpcErr.Code)
	}
	if len(rpcErr.Data) == 0 {
		t.Error("expected error data to be preserved")
	}
}

func TestHTTPClient_GetSignatureStatuses(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) map[string]interface{} {
		if req.Method != "getSignatureStatuses" {
			t.Errorf("expected method getSignatureStatuses, got %s", req.Method)
		}
		return map[string]interface{}{
			"result": map[string]interface{}{
				"context": map[string]interface{}{"slot": 82},
				"value": []interface{}{
					map[string]interface{}{
						"slot":               72,
						"confirmations":      10,
						"err":                nil,
						"confirmationStatus": "confirmed",
					},
					nil,
					map[string]interface{}{
						"slot":               48,
						"confirmations":      nil,
						"err":                map[string]interface{}{"InstructionError": []interface{}{0, "InvalidAccountData"}},
						"confirmationStatus": "finalized",
					},
				},
			},
		}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	statuses, err := client.GetSignatureStatuses(context.Background(), "sig1", "sig2", "sig3")
	if err != nil {
		t.Fatalf("GetSignatureStatuses: %v", err)
	}

	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}

	if statuses[0] == nil || statuses[0].ConfirmationStatus != CommitmentConfirmed {
		t.Errorf("unexpected first status: %+v", statuses[0])
	}
	if statuses[0].Confirmations == nil || *statuses[0].Confirmations != 10 {
		t.Errorf("expected 10 confirmations")
	}
	if statuses[1] != nil {
		t.Errorf("expected nil for unknown signature, got %+v", statuses[1])
	}
	if statuses[2] == nil || statuses[2].Err == nil {
		t.Fatalf("expected error on third status")
	}
	if statuses[2].Confirmations != nil {
		t.Errorf("expected nil confirmations once rooted")
	}
}

func TestHTTPClient_GetBlockHeight(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) map[string]interface{} {
		if req.Method != "getBlockHeight" {
			t.Errorf("expected method getBlockHeight, got %s", req.Method)
		}
		return map[string]interface{}{"result": 1233}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	height, err := client.GetBlockHeight(context.Background(), CommitmentConfirmed)
	if err != nil {
		t.Fatalf("GetBlockHeight: %v", err)
	}
	if height != 1233 {
		t.Errorf("expected height 1233, got %d", height)
	}
}

func TestHTTPClient_Retry(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := attempts.Add(1)
		if count < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  int64(999),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL,
		WithMaxRetries(3),
		WithRetryDelay(10*time.Millisecond),
	)

	height, err := client.GetBlockHeight(context.Background(), CommitmentConfirmed)
	if err != nil {
		t.Fatalf("GetBlockHeight: %v", err)
	}

	if height != 999 {
		t.Errorf("expected height 999, got %d", height)
	}

	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestHTTPClient_RPCError(t *testing.T) {
	var attempts atomic.Int32

	server := rpcServer(t, func(req rpcRequest) map[string]interface{} {
		attempts.Add(1)
		return map[string]interface{}{
			"error": map[string]interface{}{
				"code":    -32600,
				"message": "Invalid Request",
			},
		}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))

	_, err := client.GetBlockHeight(context.Background(), CommitmentConfirmed)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected *RPCError, got %T", err)
	}

	if rpcErr.Code != -32600 {
		t.Errorf("expected code -32600, got %d", rpcErr.Code)
	}
	if attempts.Load() != 1 {
		t.Errorf("RPC errors must not be retried, got %d attempts", attempts.Load())
	}
}

func TestHTTPClient_GetAccountInfo(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) map[string]interface{} {
		if req.Method != "getAccountInfo" {
			t.Errorf("expected method getAccountInfo, got %s", req.Method)
		}
		config := req.Params[1].(map[string]interface{})
		if config["encoding"] != "base64" {
			t.Errorf("expected base64 encoding, got %v", config["encoding"])
		}
		return map[string]interface{}{
			"result": map[string]interface{}{
				"value": map[string]interface{}{
					"lamports":   uint64(1000000),
					"owner":      "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb",
					"data":       []string{"SGVsbG8gV29ybGQ=", "base64"},
					"executable": false,
					"rentEpoch":  uint64(100),
				},
			},
		}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	info, err := client.GetAccountInfo(context.Background(), "testpubkey", CommitmentConfirmed)
	if err != nil {
		t.Fatalf("GetAccountInfo: %v", err)
	}

	if info == nil {
		t.Fatal("expected account info, got nil")
	}

	if info.Lamports != 1000000 {
		t.Errorf("expected lamports 1000000, got %d", info.Lamports)
	}

	if info.Owner != "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb" {
		t.Errorf("unexpected owner: %s", info.Owner)
	}

	data, err := info.DecodeData()
	if err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if string(data) != "Hello World" {
		t.Errorf("unexpected data: %q", data)
	}
}

func TestHTTPClient_GetAccountInfo_NotFound(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) map[string]interface{} {
		return map[string]interface{}{
			"result": map[string]interface{}{"value": nil},
		}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	info, err := client.GetAccountInfo(context.Background(), "nonexistent", CommitmentConfirmed)
	if err != nil {
		t.Fatalf("GetAccountInfo: %v", err)
	}

	if info != nil {
		t.Errorf("expected nil for not found, got %+v", info)
	}
}

func TestHTTPClient_Observer(t *testing.T) {
	server := rpcServer(t, func(req rpcRequest) map[string]interface{} {
		return map[string]interface{}{"result": 1}
	})
	defer server.Close()

	var methods []string
	client := NewHTTPClient(server.URL, WithObserver(func(method string, d time.Duration, err error) {
		if err != nil {
			t.Errorf("unexpected error for %s: %v", method, err)
		}
		methods = append(methods, method)
	}))

	if _, err := client.GetBlockHeight(context.Background(), ""); err != nil {
		t.Fatalf("GetBlockHeight: %v", err)
	}
	if len(methods) != 1 || methods[0] != "getBlockHeight" {
		t.Errorf("expected one getBlockHeight observation, got %v", methods)
	}
}

func TestHTTPClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := client.GetBlockHeight(ctx, CommitmentConfirmed)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
